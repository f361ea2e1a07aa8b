package http

import (
	"net/http"

	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/pkg/httpx"
)

// MeHandler serves GET /auth/me for an authenticated principal.
type MeHandler struct {
	Auth *service.Auth
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Please authenticate")
		return
	}

	u, err := h.Auth.User(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Send(w, http.StatusOK, "OK", sessionData{User: viewOf(u)})
}
