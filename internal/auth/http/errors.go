package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/pkg/httpx"
	"github.com/campusconnect/campusconnect/pkg/slogx"
)

// writeServiceError is the single conversion boundary from service errors to
// HTTP envelopes. Domain code never formats HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *service.ValidationError
		conflict   *service.ConflictError
		locked     *service.AccountLockedError
		warning    *service.AttemptsWarningError
	)

	switch {
	case errors.As(err, &validation):
		httpx.Fail(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &conflict):
		httpx.Fail(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &locked):
		httpx.Fail(w, http.StatusUnauthorized, locked.Error())
	case errors.As(err, &warning):
		httpx.Fail(w, http.StatusUnauthorized, warning.Error())
	case errors.Is(err, service.ErrReuseDetected):
		httpx.Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrEmailAlreadyVerified):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrMissingRefreshToken),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrUnauthorized):
		httpx.Fail(w, http.StatusUnauthorized, "Please authenticate")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error",
			slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
	}
}
