package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/domain"
	"github.com/campusconnect/campusconnect/internal/auth/queue"
	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/cryptox"
	"github.com/campusconnect/campusconnect/pkg/slogx"
)

// LoginOutcome classifies what a structurally successful login attempt
// actually produced. Anything other than LoginOK is a soft-fail success:
// the caller gets an explanation and a minimal user view, but no tokens.
type LoginOutcome int

const (
	LoginOK LoginOutcome = iota
	LoginDeleted
	LoginPermanentBlocked
	LoginTemporaryBlocked
	LoginEmailUnverified
)

// LoginResult is what a login attempt yields once it gets past the hard
// failures. Tokens is nil unless Outcome is LoginOK.
type LoginResult struct {
	Outcome LoginOutcome
	Message string
	User    *domain.User
	Tokens  *domain.TokenPair
}

// Login runs the fixed-precedence account state machine for a credential
// pair. Hard failures (unknown user, wrong password, lockout) come back as
// errors; account-state conditions come back as soft-fail results.
func (a *Auth) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	now := time.Now().UTC()

	rec, err := a.store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Flatten the timing difference between unknown-user and
			// wrong-password so usernames cannot be enumerated by clock.
			sleepJitter(ctx, 90*time.Millisecond, 110*time.Millisecond)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	u := &rec

	if err := a.verifyPassword(ctx, u, password, now); err != nil {
		return nil, err
	}

	if lockedOut(u.FailedLogin, now) {
		return nil, &AccountLockedError{
			MinutesRemaining: lockoutMinutesRemaining(u.FailedLogin.LastFailedAttempt, now),
		}
	}

	if res, handled := a.softFailState(u); handled {
		return res, nil
	}

	return a.completeLogin(ctx, u, now)
}

// KeepAccount is the post-grace-period recovery entry point: a soft-deleted
// user proving their credentials inside the 30-day window gets the account
// restored and is logged in. The same precedence checks as Login apply, the
// deleted state is the one branch that behaves differently.
func (a *Auth) KeepAccount(ctx context.Context, username, password string) (*LoginResult, error) {
	now := time.Now().UTC()

	rec, err := a.store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sleepJitter(ctx, 90*time.Millisecond, 110*time.Millisecond)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	u := &rec

	if err := a.verifyPassword(ctx, u, password, now); err != nil {
		return nil, err
	}

	if lockedOut(u.FailedLogin, now) {
		return nil, &AccountLockedError{
			MinutesRemaining: lockoutMinutesRemaining(u.FailedLogin.LastFailedAttempt, now),
		}
	}

	if u.IsDeleted {
		if now.After(u.DeletionDeadline()) {
			// Grace window elapsed. The account is marked for removal by
			// the external housekeeping process; notify and reject.
			if err := a.dispatcher.Enqueue(ctx, queue.AuthNotification, queue.EventAccountDeletionEmail,
				queue.AccountDeletionPayload{Email: u.Email, FirstName: u.FirstName}, queue.PriorityHigh); err != nil {
				slogx.FromContext(ctx).Warn("enqueue account deletion email failed",
					slog.String("error", err.Error()))
			}
			return nil, ErrUnauthorized
		}
		restore := false
		if err := a.store.Users().UpdateUser(ctx, u.ID, domain.UserPatch{IsDeleted: &restore}); err != nil {
			return nil, fmt.Errorf("restore account: %w", err)
		}
		u.IsDeleted = false
	}

	if res, handled := a.softFailState(u); handled {
		return res, nil
	}

	return a.completeLogin(ctx, u, now)
}

// softFailState evaluates the account-state branches shared by Login and
// KeepAccount, in precedence order: deleted, permanently blocked, temporarily
// blocked, unverified email.
func (a *Auth) softFailState(u *domain.User) (*LoginResult, bool) {
	switch {
	case u.IsDeleted:
		return &LoginResult{
			Outcome: LoginDeleted,
			Message: fmt.Sprintf(
				"Your account is scheduled for deletion on %s. Sign in via keep-account before then to restore it.",
				u.DeletionDeadline().Format("2 Jan 2006"),
			),
			User: u,
		}, true
	case u.IsPermanentBlocked:
		return &LoginResult{
			Outcome: LoginPermanentBlocked,
			Message: "Your account has been permanently blocked. Please contact the administrator.",
			User:    u,
		}, true
	case u.IsTemporaryBlocked:
		return &LoginResult{
			Outcome: LoginTemporaryBlocked,
			Message: "Your account is temporarily blocked. Please try again later.",
			User:    u,
		}, true
	case !u.IsEmailVerified:
		return &LoginResult{
			Outcome: LoginEmailUnverified,
			Message: "Please verify your email address before signing in.",
			User:    u,
		}, true
	}
	return nil, false
}

// completeLogin clears any stale failure counter, records activity, and
// issues the token pair.
func (a *Auth) completeLogin(ctx context.Context, u *domain.User, now time.Time) (*LoginResult, error) {
	patch := domain.UserPatch{LastActive: &now}
	if u.FailedLogin != nil {
		patch.ClearFailedLogin = true
	}
	if err := a.store.Users().UpdateUser(ctx, u.ID, patch); err != nil {
		return nil, fmt.Errorf("update user on login: %w", err)
	}
	u.FailedLogin = nil
	u.LastActive = now

	tokens, err := a.issueTokens(ctx, a.store, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Outcome: LoginOK,
		Message: "Logged in successfully",
		User:    u,
		Tokens:  tokens,
	}, nil
}

// verifyPassword checks the submitted password and maps the outcome into the
// login error taxonomy. A wrong password counts toward the lockout window; an
// empty one cannot match any stored hash and is rejected without incrementing
// the counter.
func (a *Auth) verifyPassword(ctx context.Context, u *domain.User, password string, now time.Time) error {
	err := a.passwords.Verify(password, u.PasswordHash)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cryptox.ErrMismatch):
		return a.recordFailure(ctx, u, now)
	case errors.Is(err, cryptox.ErrEmptyInput):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("verify password: %w", err)
	}
}

// recordFailure persists the incremented counter and picks the right error:
// lockout once the threshold is reached, otherwise a remaining-attempts
// warning.
func (a *Auth) recordFailure(ctx context.Context, u *domain.User, now time.Time) error {
	fl := nextFailure(u.FailedLogin, now)
	if err := a.store.Users().UpdateUser(ctx, u.ID, domain.UserPatch{FailedLogin: &fl}); err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}
	if fl.Times >= MaxLoginAttempts {
		return &AccountLockedError{
			MinutesRemaining: lockoutMinutesRemaining(fl.LastFailedAttempt, now),
		}
	}
	return &AttemptsWarningError{Remaining: MaxLoginAttempts - fl.Times}
}

// sleepJitter blocks for a uniformly random duration in [min, max], bailing
// early on context cancellation.
func sleepJitter(ctx context.Context, min, max time.Duration) {
	span := big.NewInt(int64(max - min + 1))
	n, err := rand.Int(rand.Reader, span)
	d := min
	if err == nil {
		d += time.Duration(n.Int64())
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
