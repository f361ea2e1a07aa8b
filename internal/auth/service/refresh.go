package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/cryptox"
)

// Refresh rotates a refresh token: the presented grant is consumed and a new
// pair is issued in one transaction. A token the store no longer holds is
// treated as replay of an already-rotated grant; every grant for that user is
// revoked and the caller gets ErrReuseDetected. When two requests race on the
// same token, the record deletion arbitrates: exactly one wins.
func (a *Auth) Refresh(ctx context.Context, token string) (*LoginResult, error) {
	if token == "" {
		return nil, ErrMissingRefreshToken
	}
	hash := cryptox.FingerprintToken(token)

	var result *LoginResult
	var reuse error
	err := a.store.WithTx(ctx, func(tx store.Tx) error {
		// revoke answers a grant absent from the store: recover the claimed
		// owner from the signature and force a global logout for them. The
		// revocation must survive the transaction, so reuse is reported out
		// of band instead of as the fn error (which would roll it back).
		revoke := func() error {
			p, err := a.tokens.VerifyRefreshToken(token)
			if err != nil {
				// Forged or expired, no owner to punish.
				return ErrInvalidRefreshToken
			}
			if err := tx.RefreshTokens().DeleteAllUserRefreshTokens(ctx, p.UserID); err != nil {
				return fmt.Errorf("revoke user tokens: %w", err)
			}
			reuse = ErrReuseDetected
			return nil
		}

		rec, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return revoke()
			}
			return fmt.Errorf("lookup refresh token: %w", err)
		}

		p, err := a.tokens.VerifyRefreshToken(token)
		if err != nil || p.UserID != rec.UserID {
			return ErrInvalidRefreshToken
		}

		// Consume before issuing. Losing this race to a concurrent
		// rotation means the grant was already spent, which is replay.
		if err := tx.RefreshTokens().DeleteRefreshToken(ctx, rec.UserID, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return revoke()
			}
			return fmt.Errorf("consume refresh token: %w", err)
		}

		u, err := tx.Users().GetUserByID(ctx, rec.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		pair, err := a.issueTokens(ctx, tx, &u)
		if err != nil {
			return err
		}
		result = &LoginResult{
			Outcome: LoginOK,
			Message: "Token refreshed successfully",
			User:    &u,
			Tokens:  pair,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if reuse != nil {
		return nil, reuse
	}
	return result, nil
}

// Logout revokes a single session by its refresh token. An unknown token is
// reported as invalid rather than silently ignored.
func (a *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingRefreshToken
	}
	p, err := a.tokens.VerifyRefreshToken(token)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	err = a.store.RefreshTokens().DeleteRefreshToken(ctx, p.UserID, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidRefreshToken
	}
	return err
}
