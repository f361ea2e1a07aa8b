package http

import (
	"net/http"

	"github.com/campusconnect/campusconnect/internal/auth/domain"
	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/pkg/httpx"
)

// SignupHandler serves POST /auth/signup.
type SignupHandler struct {
	Auth *service.Auth
}

type signupRequest struct {
	CampusID  int64                   `json:"campusId"`
	Username  string                  `json:"username"`
	Email     string                  `json:"email"`
	Password  string                  `json:"password"`
	FirstName string                  `json:"firstName"`
	LastName  string                  `json:"lastName"`
	Academic  *domain.AcademicDetails `json:"academicDetails,omitempty"`
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := service.RegisterInput{
		CampusID:  req.CampusID,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Academic != nil {
		in.Academic = *req.Academic
	}

	u, err := h.Auth.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.Send(w, http.StatusCreated,
		"Account created successfully. Please verify your email.",
		sessionData{User: viewOf(u)})
}
