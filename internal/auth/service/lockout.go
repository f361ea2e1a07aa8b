package service

import (
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/domain"
)

// Lockout policy. The block is a rolling window anchored on the last failure:
// each failed attempt inside the window extends the effective block.
const (
	MaxLoginAttempts   = 5
	LockoutBlockWindow = 5 * time.Minute
)

// lockedOut reports whether the account is inside a block window.
func lockedOut(fl *domain.FailedLogin, now time.Time) bool {
	if fl == nil {
		return false
	}
	return fl.Times >= MaxLoginAttempts &&
		now.Sub(fl.LastFailedAttempt) < LockoutBlockWindow
}

// lockoutMinutesRemaining is the user-facing wait time, rounded up so a
// nearly elapsed window still reports one minute.
func lockoutMinutesRemaining(lastFailedAttempt, now time.Time) int {
	remaining := LockoutBlockWindow - now.Sub(lastFailedAttempt)
	if remaining <= 0 {
		return 0
	}
	minutes := int(remaining / time.Minute)
	if remaining%time.Minute != 0 {
		minutes++
	}
	return minutes
}

// nextFailure computes the counter after another failed attempt: reset to 1
// when the previous block window has elapsed, increment otherwise.
func nextFailure(fl *domain.FailedLogin, now time.Time) domain.FailedLogin {
	if fl == nil || now.Sub(fl.LastFailedAttempt) >= LockoutBlockWindow {
		return domain.FailedLogin{Times: 1, LastFailedAttempt: now}
	}
	return domain.FailedLogin{Times: fl.Times + 1, LastFailedAttempt: now}
}
