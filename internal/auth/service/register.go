package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/cache"
	"github.com/campusconnect/campusconnect/internal/auth/domain"
	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/idx"
	"github.com/campusconnect/campusconnect/pkg/slogx"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._]{2,29}$`)

const minPasswordLength = 8

// RegisterInput is the signup request after transport-level decoding.
type RegisterInput struct {
	CampusID  int64
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Academic  domain.AcademicDetails
}

// reservationEntry is the value stored under a claimed username.
type reservationEntry struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Register creates an unverified account and kicks off email verification.
// Uniqueness is checked up front for friendly field-level errors, then
// enforced again by the storage layer's unique indexes, so a concurrent
// duplicate still loses.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := a.validateRegistration(in); err != nil {
		return nil, err
	}

	if err := a.checkUniqueness(ctx, in); err != nil {
		return nil, err
	}

	id := idx.New().String()
	if err := a.reserveUsername(ctx, in.Username, id, in.Email); err != nil {
		return nil, err
	}

	hash, err := a.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:              id,
		CampusID:        in.CampusID,
		Username:        in.Username,
		Email:           in.Email,
		PasswordHash:    hash,
		IsEmailVerified: false,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Academic:        in.Academic,
		Role:            domain.DefaultRole,
		LastActive:      now,
		ShowOnboarding:  true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := a.store.Users().CreateUser(ctx, u); err != nil {
		a.releaseUsername(ctx, in.Username)
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, &ConflictError{Field: "account"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// The unique index owns the name from here on.
	a.releaseUsername(ctx, in.Username)

	if err := a.SendVerificationEmail(ctx, u.Email); err != nil {
		// The account exists either way; the user can re-request a code.
		slogx.FromContext(ctx).Warn("send verification after signup failed",
			slog.String("email", u.Email), slog.String("error", err.Error()))
	}

	return &u, nil
}

func (a *Auth) validateRegistration(in RegisterInput) error {
	if in.CampusID <= 0 {
		return &ValidationError{Field: "campusId", Message: "must be a positive institutional id"}
	}
	if !usernameRe.MatchString(in.Username) {
		return &ValidationError{Field: "username", Message: "must be 3-30 chars of lowercase letters, digits, dot, underscore"}
	}
	if in.Email == "" || !strings.HasSuffix(in.Email, "@"+a.cfg.EmailDomain) {
		return &ValidationError{Field: "email", Message: fmt.Sprintf("must be a %s address", a.cfg.EmailDomain)}
	}
	if len(in.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if in.FirstName == "" {
		return &ValidationError{Field: "firstName", Message: "is required"}
	}
	return nil
}

func (a *Auth) checkUniqueness(ctx context.Context, in RegisterInput) error {
	if taken, err := a.store.Users().UsernameTaken(ctx, in.Username); err != nil {
		return fmt.Errorf("check username: %w", err)
	} else if taken {
		return &ConflictError{Field: "username"}
	}
	if taken, err := a.store.Users().EmailTaken(ctx, in.Email); err != nil {
		return fmt.Errorf("check email: %w", err)
	} else if taken {
		return &ConflictError{Field: "email"}
	}
	if taken, err := a.store.Users().CampusIDTaken(ctx, in.CampusID); err != nil {
		return fmt.Errorf("check campus id: %w", err)
	} else if taken {
		return &ConflictError{Field: "campusId"}
	}
	return nil
}

// reserveUsername claims the name for the duration of the signup so two
// concurrent registrations for the same username cannot both proceed past
// validation. The claim expires on its own if the signup is abandoned.
func (a *Auth) reserveUsername(ctx context.Context, username, id, email string) error {
	existing, err := a.cache.Get(ctx, cache.NSUsernameReservation, username)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return fmt.Errorf("check reservation: %w", err)
	}
	if err == nil {
		var held reservationEntry
		if jsonErr := json.Unmarshal([]byte(existing), &held); jsonErr != nil || held.Email != email {
			return &ConflictError{Field: "username"}
		}
		// Same applicant retrying; refresh the claim below.
	}
	val, err := json.Marshal(reservationEntry{ID: id, Email: email})
	if err != nil {
		return fmt.Errorf("encode reservation: %w", err)
	}
	if err := a.cache.SetWithExpiry(ctx, cache.NSUsernameReservation, username,
		string(val), a.cfg.UsernameReservationTTL); err != nil {
		return fmt.Errorf("reserve username: %w", err)
	}
	return nil
}

func (a *Auth) releaseUsername(ctx context.Context, username string) {
	if err := a.cache.Delete(ctx, cache.NSUsernameReservation, username); err != nil {
		slogx.FromContext(ctx).Warn("release username reservation failed",
			slog.String("username", username), slog.String("error", err.Error()))
	}
}

// CheckUsername reports whether a username is free to register, considering
// both persisted accounts and live signup reservations.
func (a *Auth) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernameRe.MatchString(username) {
		return false, &ValidationError{Field: "username", Message: "must be 3-30 chars of lowercase letters, digits, dot, underscore"}
	}
	taken, err := a.store.Users().UsernameTaken(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return false, nil
	}
	if _, err := a.cache.Get(ctx, cache.NSUsernameReservation, username); err == nil {
		return false, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return false, fmt.Errorf("check reservation: %w", err)
	}
	return true, nil
}
