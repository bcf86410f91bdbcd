package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/logger"
	appCtx "github.com/baechuer/real-time-ressys/services/explore-service/internal/pkg/context"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	t.Run("generates_when_missing", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = appCtx.GetRequestID(r.Context())
		}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(HeaderXRequestID))
	})

	t.Run("keeps_incoming", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = appCtx.GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, "abc-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rr.Header().Get(HeaderXRequestID))
	})
}

func TestRequestID_RejectsUnsafeIDs(t *testing.T) {
	for name, id := range map[string]string{
		"too_long":    strings.Repeat("a", 129),
		"has_space":   "abc 123",
		"has_newline": "abc\n123",
	} {
		t.Run(name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = appCtx.GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header[HeaderXRequestID] = []string{id}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, id, seen)
			assert.Len(t, seen, 36)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, req)
		return rr
	}

	t.Run("public_request", func(t *testing.T) {
		rr := serve(httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
		assert.Empty(t, rr.Header().Get("Cache-Control"))
		assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
	})

	t.Run("authorized_request_is_not_cached", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer x")

		assert.Equal(t, "private, no-store", serve(req).Header().Get("Cache-Control"))
	})
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf)
	t.Cleanup(func() { logger.InitWithWriter(io.Discard) })

	r := chi.NewRouter()
	r.Use(AccessLog)
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/things/7?lang=en", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "short and stout", rr.Body.String())
	assert.Contains(t, buf.String(), "http_request")
	assert.Contains(t, buf.String(), "/things/{id}")
	assert.Contains(t, buf.String(), "lang=en")

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Empty(t, buf.String())
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/things/{id}", "202"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/2", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/things/{id}", "202"))
	assert.Equal(t, before+2, after)
}
