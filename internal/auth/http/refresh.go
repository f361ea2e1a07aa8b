package http

import (
	"net/http"

	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/pkg/httpx"
)

// RefreshHandler serves GET /auth/refresh-token.
type RefreshHandler struct {
	Auth *service.Auth
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(cookieRefreshToken); err == nil {
		token = c.Value
	}

	// The presented token is spent regardless of outcome; drop it from the
	// client before touching the store.
	clearRefreshCookies(w)

	res, err := h.Auth.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeLoginResult(w, res)
}

// LogoutHandler serves POST /auth/logout. The cookies are cleared no matter
// what; an unknown or missing token still ends the client session.
type LogoutHandler struct {
	Auth *service.Auth
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(cookieRefreshToken); err == nil {
		token = c.Value
	}

	clearAuthCookies(w)

	if token != "" {
		// Best effort revocation; the grant may already be gone.
		_ = h.Auth.Logout(r.Context(), token)
	}

	httpx.Send(w, http.StatusOK, "Logged out successfully", nil)
}
