package middleware

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"coverscope/pkg/requestcontext"
)

// ClientMetadata extracts the client IP, raw User-Agent, and a parsed
// client summary into the request context. Audit events consume these;
// comparison logic never does. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPFromRequest(r)
		ua := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, ua, summarizeUserAgent(ua))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// summarizeUserAgent reduces a User-Agent header to "name/version" for
// audit records, avoiding raw header storage.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	parsed := useragent.New(raw)
	name, version := parsed.Browser()
	if name == "" {
		// Non-browser clients (curl, SDKs) keep their product token.
		if idx := strings.IndexByte(raw, ' '); idx > 0 {
			return raw[:idx]
		}
		return raw
	}
	if version == "" {
		return name
	}
	return name + "/" + version
}

// clientIPFromRequest extracts the real client IP, handling proxies and
// load balancers.
func clientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" (or "[::1]:port" for IPv6).
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return ""
}
