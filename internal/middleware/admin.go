package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AdminTokenHeader carries the operator token for system-wide maintenance.
const AdminTokenHeader = "X-Admin-Token"

// AdminAuth admits requests whose AdminTokenHeader matches token. With an
// empty token every request is refused with 403, so the routes stay
// closed unless an operator configures one.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				reject(w, http.StatusForbidden, "maintenance endpoints are disabled")
				return
			}
			got := r.Header.Get(AdminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				unauthorized(w, "invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
