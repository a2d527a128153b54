// Package config provides application configuration for rowbind services,
// loaded from environment variables with an optional YAML file overlay.
//
// # Configuration Structure
//
// Server settings:
//
//	ROWBIND_HOST="0.0.0.0"
//	ROWBIND_PORT="8080"
//	ROWBIND_HEALTH_PORT="9090"
//	ROWBIND_READ_TIMEOUT="15s"
//	ROWBIND_WRITE_TIMEOUT="15s"
//	ROWBIND_SHUTDOWN_TIMEOUT="30s"
//
// Database settings:
//
//	ROWBIND_DB_DRIVER="postgres"  # postgres, sqlite3
//	ROWBIND_DB_URL="postgres://localhost/rowbind?sslmode=disable"
//	ROWBIND_DB_MAX_OPEN_CONNS="20"
//	ROWBIND_DB_MAX_IDLE_CONNS="5"
//	ROWBIND_DB_CONN_TIMEOUT="5s"
//
// Scan settings:
//
//	ROWBIND_PLAN_CACHE_SIZE="1024"
//
// Observability settings:
//
//	ROWBIND_LOG_LEVEL="info"  # debug, info, warn, error
//	ROWBIND_METRICS_ENABLED="true"
//	ROWBIND_OTEL_ENABLED="false"
//	ROWBIND_OTEL_ENDPOINT="localhost:4317"
//
// # YAML overlay
//
// A YAML file passed via -config overlays the environment values; only keys
// present in the file are applied:
//
//	server:
//	  port: "8443"
//	database:
//	  driver: sqlite3
//	  url: file:demo.db?cache=shared
//
// Configuration is validated once at startup; an invalid driver, missing
// URL or colliding ports fail fast before any mapper registration runs.
package config
