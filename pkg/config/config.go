package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/rowbind/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Scan          ScanConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds the query executor connection settings
type DatabaseConfig struct {
	Driver       string
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
}

// ScanConfig holds row materialization settings
type ScanConfig struct {
	PlanCacheSize int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	obs, err := loadObservabilityConfig()
	if err != nil {
		return nil, fmt.Errorf("configuration loading failed: %w", err)
	}
	return &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Scan:          loadScanConfig(),
		Observability: obs,
	}, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("ROWBIND_HOST", "0.0.0.0"),
		Port:            getEnv("ROWBIND_PORT", "8080"),
		ReadTimeout:     getEnvDuration("ROWBIND_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("ROWBIND_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("ROWBIND_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("ROWBIND_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("ROWBIND_HEALTH_PORT", "9090"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:       getEnv("ROWBIND_DB_DRIVER", "postgres"),
		URL:          getEnv("ROWBIND_DB_URL", ""),
		MaxOpenConns: getEnvInt("ROWBIND_DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns: getEnvInt("ROWBIND_DB_MAX_IDLE_CONNS", 5),
		ConnTimeout:  getEnvDuration("ROWBIND_DB_CONN_TIMEOUT", 5*time.Second),
	}
}

func loadScanConfig() ScanConfig {
	return ScanConfig{
		PlanCacheSize: getEnvInt("ROWBIND_PLAN_CACHE_SIZE", 1024),
	}
}

func loadObservabilityConfig() (ObservabilityConfig, error) {
	level, err := observability.ParseLogLevel(getEnv("ROWBIND_LOG_LEVEL", "info"))
	if err != nil {
		return ObservabilityConfig{}, err
	}
	return ObservabilityConfig{
		LogLevel:           level,
		MetricsEnabled:     getEnvBool("ROWBIND_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("ROWBIND_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("ROWBIND_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("ROWBIND_OTEL_SERVICE_NAME", "rowbind-demo"),
		OTelServiceVersion: getEnv("ROWBIND_OTEL_SERVICE_VERSION", "0.1.0"),
		OTelInsecure:       getEnvBool("ROWBIND_OTEL_INSECURE", true),
	}, nil
}

// fileConfig mirrors Config with optional fields for the YAML overlay.
type fileConfig struct {
	Server struct {
		Host            *string        `yaml:"host"`
		Port            *string        `yaml:"port"`
		HealthPort      *string        `yaml:"health_port"`
		ReadTimeout     *time.Duration `yaml:"read_timeout"`
		WriteTimeout    *time.Duration `yaml:"write_timeout"`
		IdleTimeout     *time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout *time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Database struct {
		Driver       *string        `yaml:"driver"`
		URL          *string        `yaml:"url"`
		MaxOpenConns *int           `yaml:"max_open_conns"`
		MaxIdleConns *int           `yaml:"max_idle_conns"`
		ConnTimeout  *time.Duration `yaml:"conn_timeout"`
	} `yaml:"database"`
	Scan struct {
		PlanCacheSize *int `yaml:"plan_cache_size"`
	} `yaml:"scan"`
	Observability struct {
		LogLevel       *string `yaml:"log_level"`
		MetricsEnabled *bool   `yaml:"metrics_enabled"`
		OTelEnabled    *bool   `yaml:"otel_enabled"`
		OTelEndpoint   *string `yaml:"otel_endpoint"`
	} `yaml:"observability"`
}

// ApplyFile overlays settings from a YAML file; only keys present in the
// file override the current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyString(&c.Server.Host, fc.Server.Host)
	applyString(&c.Server.Port, fc.Server.Port)
	applyString(&c.Server.HealthPort, fc.Server.HealthPort)
	applyDuration(&c.Server.ReadTimeout, fc.Server.ReadTimeout)
	applyDuration(&c.Server.WriteTimeout, fc.Server.WriteTimeout)
	applyDuration(&c.Server.IdleTimeout, fc.Server.IdleTimeout)
	applyDuration(&c.Server.ShutdownTimeout, fc.Server.ShutdownTimeout)

	applyString(&c.Database.Driver, fc.Database.Driver)
	applyString(&c.Database.URL, fc.Database.URL)
	applyInt(&c.Database.MaxOpenConns, fc.Database.MaxOpenConns)
	applyInt(&c.Database.MaxIdleConns, fc.Database.MaxIdleConns)
	applyDuration(&c.Database.ConnTimeout, fc.Database.ConnTimeout)

	applyInt(&c.Scan.PlanCacheSize, fc.Scan.PlanCacheSize)

	if fc.Observability.LogLevel != nil {
		level, err := observability.ParseLogLevel(*fc.Observability.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level in config file: %w", err)
		}
		c.Observability.LogLevel = level
	}
	applyBool(&c.Observability.MetricsEnabled, fc.Observability.MetricsEnabled)
	applyBool(&c.Observability.OTelEnabled, fc.Observability.OTelEnabled)
	applyString(&c.Observability.OTelEndpoint, fc.Observability.OTelEndpoint)

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q (postgres, sqlite3)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database max open connections must be positive")
	}

	if c.Scan.PlanCacheSize < 1 {
		return fmt.Errorf("scan plan cache size must be positive")
	}

	if c.Observability.OTelEnabled && c.Observability.OTelEndpoint == "" {
		return fmt.Errorf("otel endpoint is required when otel is enabled")
	}
	return nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func applyDuration(dst *time.Duration, src *time.Duration) {
	if src != nil {
		*dst = *src
	}
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
