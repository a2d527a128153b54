package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/rowbind/pkg/observability"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates an id", func(t *testing.T) {
		var seen string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = observability.GetRequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("honors incoming header", func(t *testing.T) {
		var seen string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = observability.GetRequestID(r.Context())
		}))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", "upstream-42")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "upstream-42", seen)
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.InfoLevel, &buf)

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/people", nil))

	logged := buf.String()
	assert.Contains(t, logged, "/v1/people")
	assert.Contains(t, logged, "418")
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	handler := MetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/people", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.HTTPRequestsTotal.WithLabelValues("GET", "/v1/people", "200")))
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.ErrorLevel, &buf)

	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "kaboom")
}

func TestParseLimitParam(t *testing.T) {
	t.Run("default when absent", func(t *testing.T) {
		limit, err := ParseLimitParam(httptest.NewRequest("GET", "/", nil), 50, 500)
		require.NoError(t, err)
		assert.Equal(t, 50, limit)
	})

	t.Run("clamped to max", func(t *testing.T) {
		limit, err := ParseLimitParam(httptest.NewRequest("GET", "/?limit=9999", nil), 50, 500)
		require.NoError(t, err)
		assert.Equal(t, 500, limit)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseLimitParam(httptest.NewRequest("GET", "/?limit=abc", nil), 50, 500)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive", func(t *testing.T) {
		_, err := ParseLimitParam(httptest.NewRequest("GET", "/?limit=0", nil), 50, 500)
		assert.Error(t, err)
	})
}
