package middleware

import (
	"net/http"
	"time"

	"coverscope/pkg/requestcontext"
)

// RequestTime pins a single observation of the wall clock for the whole
// request so every component sees the same "now".
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
