package http

import (
	"net/http"

	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/pkg/httpx"
)

// SendVerificationHandler serves POST /auth/send-verification-email.
type SendVerificationHandler struct {
	Auth *service.Auth
}

func (h *SendVerificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Auth.SendVerificationEmail(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Send(w, http.StatusOK, "Verification email sent", nil)
}

// VerifyEmailHandler serves POST /auth/verify-email. Success opens a session,
// so the client lands signed in straight from the verification link.
type VerifyEmailHandler struct {
	Auth *service.Auth
}

func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   int    `json:"otp"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.Auth.VerifyEmail(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeLoginResult(w, res)
}
