package http

import (
	"encoding/json"
	"net/http"

	"github.com/campusconnect/campusconnect/internal/auth/domain"
)

// userView is the user projection returned by the auth endpoints. Soft-fail
// responses carry it too, so clients can render guidance without a session.
type userView struct {
	ID              string `json:"id"`
	CampusID        int64  `json:"campusId"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	ProfilePicture  string `json:"profilePicture,omitempty"`
	Bio             string `json:"bio,omitempty"`
	Role            string `json:"role"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	ShowOnboarding  bool   `json:"showOnboarding"`
}

func viewOf(u *domain.User) userView {
	return userView{
		ID:              u.ID,
		CampusID:        u.CampusID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfilePicture:  u.ProfilePicture,
		Bio:             u.Bio,
		Role:            string(u.Role),
		IsEmailVerified: u.IsEmailVerified,
		ShowOnboarding:  u.ShowOnboarding,
	}
}

// sessionData is the data payload of login-shaped successes. Tokens is nil on
// soft-fail paths.
type sessionData struct {
	User   userView          `json:"user"`
	Tokens *domain.TokenPair `json:"tokens,omitempty"`
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
