package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// CookieName is the session cookie holding the token.
const CookieName = "token"

type contextKey string

// UserClaimsKey is the context key for user claims.
const UserClaimsKey = contextKey("userClaims")

// ClaimsFromContext retrieves the authenticated claims stored by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

// Middleware protects routes behind a valid session token. The token is
// read from the Authorization header or the session cookie; requests
// without one, or with an invalid or expired one, are bounced to the
// login page with a reason the front end can surface.
func (s *TokenService) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// 1. Try to get the token from the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, "Bearer ")
				if len(parts) == 2 {
					tokenStr = parts[1]
				}
			}

			// 2. If not in header, fall back to the cookie
			if tokenStr == "" {
				if cookie, err := r.Cookie(CookieName); err == nil {
					tokenStr = cookie.Value
				}
			}

			if tokenStr == "" {
				redirectToLogin(w, r, "login_required")
				return
			}

			claims, err := s.Validate(tokenStr)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected session token")
				if errors.Is(err, ErrTokenExpired) {
					redirectToLogin(w, r, "session_expired")
				} else {
					redirectToLogin(w, r, "session_invalid")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, "/login?reason="+reason, http.StatusFound)
}
