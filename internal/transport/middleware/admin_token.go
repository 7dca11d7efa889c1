package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AdminTokenHeader carries the shared admin secret.
const AdminTokenHeader = "X-Admin-Token"

// AdminToken rejects requests whose X-Admin-Token does not match token with
// 401. An empty token disables the check.
func AdminToken(token string) Middleware {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(AdminTokenHeader))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid admin token"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
