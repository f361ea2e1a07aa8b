package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusconnect/campusconnect/pkg/jwtx"
	"github.com/campusconnect/campusconnect/pkg/slogx"
)

// CookieAccessToken is the cookie checked when no Authorization header is set.
const CookieAccessToken = "access_token"

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (jwtx.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(jwtx.Principal)
	return p, ok
}

// AuthnMiddleware verifies the access token from the Authorization header or
// the access_token cookie and injects the principal into the context.
func AuthnMiddleware(verifier *jwtx.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			raw := bearerToken(r)
			if raw == "" {
				if c, err := r.Cookie(CookieAccessToken); err == nil {
					raw = c.Value
				}
			}
			if raw == "" {
				Fail(w, http.StatusUnauthorized, "Please authenticate")
				return
			}

			principal, err := verifier.VerifyAccessToken(raw)
			if err != nil {
				log.Warn("access token verification failed", "err", err)
				Fail(w, http.StatusUnauthorized, "Please authenticate")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}
