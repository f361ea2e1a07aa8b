package http

import (
	"net/http"

	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/pkg/httpx"
)

// CheckUsernameHandler serves GET /auth/check-username/{username}.
type CheckUsernameHandler struct {
	Auth *service.Auth
}

func (h *CheckUsernameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	available, err := h.Auth.CheckUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg := "Username is available"
	if !available {
		msg = "Username is already taken"
	}
	httpx.Send(w, http.StatusOK, msg, map[string]bool{"available": available})
}
