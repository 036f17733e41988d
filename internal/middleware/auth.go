package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/vooagent/voo/internal/models"
)

var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

// Auth requires the inspector token as a bearer token or in the X-API-Key
// header on every non-public path.
func Auth(token string) func(http.Handler) http.Handler {
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
					key = strings.TrimSpace(bearer)
				}
			}

			if key == "" {
				models.WriteError(w, http.StatusUnauthorized, "inspector token required")
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), want) != 1 {
				models.WriteError(w, http.StatusForbidden, "invalid inspector token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
