package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/cache"
	"github.com/campusconnect/campusconnect/internal/auth/domain"
	"github.com/campusconnect/campusconnect/internal/auth/queue"
	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/cryptox"
	"github.com/campusconnect/campusconnect/pkg/slogx"
)

// otpEntry is the cached value behind an in-flight verification code.
type otpEntry struct {
	OTP   int    `json:"otp"`
	Email string `json:"email"`
}

// otpCacheKey derives the lookup key for a code. The deterministic OTP hash
// is part of the key, so the lookup itself proves knowledge of the code.
func (a *Auth) otpCacheKey(email string, otp int) (string, error) {
	hash, err := a.otps.Hash(email + strconv.Itoa(otp))
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}
	return email + ":" + hash, nil
}

// SendVerificationEmail generates a fresh code for the account, queues the
// delivery job, and caches the code for the configured TTL. The cache TTL is
// the only expiry mechanism.
func (a *Auth) SendVerificationEmail(ctx context.Context, email string) error {
	u, err := a.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("load user: %w", err)
	}
	if u.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}

	otp, err := cryptox.GenerateOTP()
	if err != nil {
		return err
	}
	key, err := a.otpCacheKey(u.Email, otp)
	if err != nil {
		return err
	}

	if err := a.dispatcher.Enqueue(ctx, queue.AuthNotification, queue.EventVerifyOTP,
		queue.VerifyOTPPayload{Email: u.Email, OTP: otp}, queue.PriorityHighest); err != nil {
		return fmt.Errorf("enqueue verification email: %w", err)
	}

	val, err := json.Marshal(otpEntry{OTP: otp, Email: u.Email})
	if err != nil {
		return fmt.Errorf("encode otp entry: %w", err)
	}
	if err := a.cache.SetWithExpiry(ctx, cache.NSEmailVerification, key, string(val), a.cfg.OTPTTL); err != nil {
		return fmt.Errorf("cache otp: %w", err)
	}
	return nil
}

// VerifyEmail redeems a code. A miss covers both wrong and expired codes;
// the two are indistinguishable on purpose. Success marks the account
// verified and logs the user in.
func (a *Auth) VerifyEmail(ctx context.Context, email string, otp int) (*LoginResult, error) {
	rec, err := a.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	u := &rec

	key, err := a.otpCacheKey(u.Email, otp)
	if err != nil {
		return nil, err
	}
	if _, err := a.cache.Get(ctx, cache.NSEmailVerification, key); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("lookup otp: %w", err)
	}

	firstVerification := !u.IsEmailVerified
	if firstVerification {
		verified := true
		if err := a.store.Users().UpdateUser(ctx, u.ID, domain.UserPatch{IsEmailVerified: &verified}); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
		u.IsEmailVerified = true

		if err := a.dispatcher.Enqueue(ctx, queue.AuthNotification, queue.EventWelcomeEmail,
			queue.WelcomeEmailPayload{Email: u.Email, FirstName: u.FirstName}, queue.PriorityMedium); err != nil {
			slogx.FromContext(ctx).Warn("enqueue welcome email failed",
				slog.String("email", u.Email), slog.String("error", err.Error()))
		}
	}

	// A deleted or blocked account still gets its verification recorded,
	// but no session. Same state precedence as Login.
	if res, handled := a.softFailState(u); handled {
		return res, nil
	}

	res, err := a.completeLogin(ctx, u, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	res.Message = "Email verified successfully"
	return res, nil
}
