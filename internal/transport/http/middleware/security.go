package middleware

import "net/http"

var apiHeaders = [][2]string{
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Cross-Origin-Resource-Policy", "cross-origin"},
}

// SecurityHeaders sets the JSON API response headers. Listings are public
// data, but anything answered for a bearer token is per user and must not be
// stored by shared caches.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range apiHeaders {
			h.Set(kv[0], kv[1])
		}
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		if r.Header.Get("Authorization") != "" {
			h.Set("Cache-Control", "private, no-store")
		}

		next.ServeHTTP(w, r)
	})
}
