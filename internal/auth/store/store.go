package store

import (
	"context"
	"errors"

	"github.com/campusconnect/campusconnect/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, implemented by concrete drivers
// (sqlite today). It exposes sub-repositories per entity to keep concerns
// narrow and testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rollback when fn errors,
	// commit otherwise. Prefer this over Tx for multi-step operations that
	// must be atomic (e.g. refresh rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the underlying connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by record id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is the login lookup.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is the verification-flow lookup.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists when any of
	// the unique columns (username, email, campus id) collide.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser applies the patch to a user and bumps updated_at.
	UpdateUser(ctx context.Context, userID string, p domain.UserPatch) error

	// EmailTaken reports whether a user with the email already exists.
	EmailTaken(ctx context.Context, email string) (bool, error)

	// UsernameTaken reports whether a user with the username already exists.
	UsernameTaken(ctx context.Context, username string) (bool, error)

	// CampusIDTaken reports whether the institutional id is already claimed.
	CampusIDTaken(ctx context.Context, campusID int64) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new grant. Returns ErrAlreadyExists when
	// the token fingerprint collides: practically impossible given token
	// entropy, but handled rather than ignored.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the grant for a token fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes a single grant for the user. Absence is a
	// hard ErrNotFound: it signals either a logic bug or a reuse scenario
	// upstream and must not be silently ignored.
	DeleteRefreshToken(ctx context.Context, userID, hash string) error

	// DeleteAllUserRefreshTokens removes every grant for a user. Idempotent;
	// used for reuse-detected invalidation.
	DeleteAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}
