package admin

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/trafficmon/pkg/handler"
)

// BasicAuth rejects requests whose credentials do not match cfg.
func BasicAuth(cfg Config) func(http.Handler) http.Handler {
	realm := `Basic realm="` + cfg.Realm + `", charset="UTF-8"`
	hash := []byte(cfg.PasswordHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if ok && cfg.PasswordHash != "" {
				userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.Username)) == 1
				passOK := bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
				if userOK && passOK {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("WWW-Authenticate", realm)
			_ = handler.JSONError(handler.ErrUnauthorized).Render(w, r)
		})
	}
}
