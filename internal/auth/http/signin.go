package http

import (
	"net/http"

	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/pkg/httpx"
)

// SigninHandler serves POST /auth/signin.
type SigninHandler struct {
	Auth *service.Auth
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *SigninHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeLoginResult(w, res)
}

// KeepAccountHandler serves POST /auth/keep-account: the same credential
// check as signin, but a soft-deleted account inside its grace window is
// restored instead of bounced.
type KeepAccountHandler struct {
	Auth *service.Auth
}

func (h *KeepAccountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.Auth.KeepAccount(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeLoginResult(w, res)
}

// writeLoginResult renders both real logins and soft-fail successes: HTTP 200
// either way, tokens and cookies only when a session was actually opened.
func writeLoginResult(w http.ResponseWriter, res *service.LoginResult) {
	data := sessionData{User: viewOf(res.User)}
	if res.Outcome == service.LoginOK {
		setAuthCookies(w, res.Tokens)
		data.Tokens = res.Tokens
	}
	httpx.Send(w, http.StatusOK, res.Message, data)
}
