package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Middleware attaches a Session to every request. No Authorization
// header means anonymous, as does a bearer token when no verifier is
// configured. A header that is not a bearer token, or a token that does
// not verify, is rejected with 401.
func Middleware(v *Verifier, r *Resolver, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, req)
				return
			}
			raw, ok := bearer(header)
			if !ok {
				unauthorized(w, "invalid authorization header")
				return
			}
			if v == nil {
				// проверять нечем: запрос анонимный
				next.ServeHTTP(w, req)
				return
			}
			claims, err := v.Verify(raw)
			if err != nil {
				log.Debug().Err(err).Str("path", req.URL.Path).Msg("token rejected")
				msg := "unauthorized"
				if errors.Is(err, ErrExpiredToken) {
					msg = "token expired"
				}
				unauthorized(w, msg)
				return
			}

			var s Session
			if r != nil {
				s = r.Resolve(req.Context(), claims.Subject, ParseRole(claims.UserMetadata.UserType))
			} else {
				role := ParseRole(claims.UserMetadata.UserType)
				s = Session{UserID: claims.Subject, Role: role, RoleLabel: role.Label()}
			}
			s.Email = claims.Email
			next.ServeHTTP(w, req.WithContext(WithSession(req.Context(), s)))
		})
	}
}

func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
