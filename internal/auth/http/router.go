// Package http wires the auth workflows to their HTTP surface: route
// registration, cookie handling, and the single error-to-envelope boundary.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/cache"
	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/httpx"
	"github.com/campusconnect/campusconnect/pkg/jwtx"
	"github.com/campusconnect/campusconnect/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     *jwtx.Service
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache cache.Cache
	Auth  *service.Auth
}

func NewRouter(
	auth *service.Auth,
	verifier *jwtx.Service,
	st store.Store,
	c cache.Cache,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		cache:        c,
		Auth:         auth,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Credential-bearing endpoints get the strict per-IP limit.
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(&SignupHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /auth/signin",
		httpx.Chain(&SigninHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /auth/keep-account",
		httpx.Chain(&KeepAccountHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /auth/send-verification-email",
		httpx.Chain(&SendVerificationHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /auth/verify-email",
		httpx.Chain(&VerifyEmailHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))

	r.Mux.Handle("GET /auth/refresh-token",
		httpx.Chain(&RefreshHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.LenientLimit),
		))
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(&LogoutHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.LenientLimit),
		))
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(&MeHandler{Auth: r.Auth},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByIP(httpx.LenientLimit),
		))
	r.Mux.Handle("GET /auth/check-username/{username}",
		httpx.Chain(&CheckUsernameHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.LenientLimit),
		))
}

func (r *Router) registerSystem() {
	// Health probes share one generous per-IP limit.
	public := httpx.RateLimitByIP(httpx.PublicLimit)
	r.Mux.Handle("GET /healthcheck", public(LivezHandler(r.startTime, r.buildVersion)))
	r.Mux.Handle("GET /livez", public(LivezHandler(r.startTime, r.buildVersion)))
	r.Mux.Handle("GET /readyz", public(ReadyzHandler(r.store, r.cache)))
}
