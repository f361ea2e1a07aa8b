// Package service implements the auth orchestrator: registration, the login
// state machine, email verification, and refresh-token rotation with reuse
// detection.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/cache"
	"github.com/campusconnect/campusconnect/internal/auth/domain"
	"github.com/campusconnect/campusconnect/internal/auth/queue"
	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/cryptox"
	"github.com/campusconnect/campusconnect/pkg/idx"
	"github.com/campusconnect/campusconnect/pkg/jwtx"
)

// Config carries the tunables the orchestrator needs beyond its dependencies.
type Config struct {
	// EmailDomain is the institutional domain every account email must
	// belong to, e.g. "campus.edu".
	EmailDomain string

	// OTPTTL bounds how long a verification code stays redeemable.
	OTPTTL time.Duration

	// UsernameReservationTTL bounds how long a signup claim on a username
	// lives without the registration completing.
	UsernameReservationTTL time.Duration
}

// Auth composes the credential hasher, token service, stores, cache, and job
// dispatch into the login/registration/verification/refresh workflows. No
// collaborator reaches into another's internal state.
type Auth struct {
	store      store.Store
	cache      cache.Cache
	dispatcher queue.Dispatcher
	tokens     *jwtx.Service
	passwords  *cryptox.Hasher
	otps       *cryptox.OTPHasher
	cfg        Config
}

func NewAuth(
	st store.Store,
	c cache.Cache,
	dispatcher queue.Dispatcher,
	tokens *jwtx.Service,
	passwords *cryptox.Hasher,
	otps *cryptox.OTPHasher,
	cfg Config,
) *Auth {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	if cfg.UsernameReservationTTL <= 0 {
		cfg.UsernameReservationTTL = 15 * time.Minute
	}
	return &Auth{
		store:      st,
		cache:      c,
		dispatcher: dispatcher,
		tokens:     tokens,
		passwords:  passwords,
		otps:       otps,
		cfg:        cfg,
	}
}

func principalOf(u *domain.User) jwtx.Principal {
	return jwtx.Principal{
		UserID:   u.ID,
		CampusID: u.CampusID,
		Role:     string(u.Role),
	}
}

// issueTokens mints an access/refresh pair for u and persists the refresh
// grant by fingerprint. st may be the root store or an open transaction.
func (a *Auth) issueTokens(ctx context.Context, st store.Store, u *domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	p := principalOf(u)

	access, err := a.tokens.IssueAccessToken(p)
	if err != nil {
		return nil, err
	}
	refresh, err := a.tokens.IssueRefreshToken(p)
	if err != nil {
		return nil, err
	}

	record := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: now.Add(a.tokens.RefreshTTL()),
		CreatedAt: now,
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  now.Add(a.tokens.AccessTTL()),
		RefreshToken:     refresh,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

// User returns the account behind an authenticated principal. A dangling id
// (deleted row, stale token) reads as an authentication failure.
func (a *Auth) User(ctx context.Context, id string) (*domain.User, error) {
	u, err := a.store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}
