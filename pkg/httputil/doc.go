// Package httputil provides HTTP utilities for standardized request/response
// handling.
//
// # Overview
//
// This package offers helper functions for JSON responses, error responses,
// parameter parsing, and the middleware chain used by rowbind services:
// request id injection, structured request logging, Prometheus
// instrumentation and panic recovery.
//
// # Response helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteNotFoundError(w, "person not found")
//	httputil.WriteInternalError(w, err)
//
// # Middleware
//
// Middleware composes outermost-first:
//
//	handler = httputil.RecoveryMiddleware(logger)(
//		httputil.RequestIDMiddleware(
//			httputil.LoggingMiddleware(logger)(
//				httputil.MetricsMiddleware(metrics)(router))))
package httputil
