package response

import (
	"net/http"

	appCtx "github.com/baechuer/real-time-ressys/services/explore-service/internal/pkg/context"
)

// RequestIDFromRequest prefers the id set by the RequestID middleware, then the raw header.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if v := appCtx.GetRequestID(r.Context()); v != "" {
		return v
	}
	if v := r.Header.Get("X-Request-Id"); v != "" {
		return v
	}
	return r.Header.Get("X-Request-ID")
}
