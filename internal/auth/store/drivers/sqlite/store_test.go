package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/domain"
	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func testUser(campusID int64, username string) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           idx.New().String(),
		CampusID:     campusID,
		Username:     username,
		Email:        username + "@campus.edu",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		FirstName:    "Test",
		Role:         domain.DefaultRole,
		Academic: domain.AcademicDetails{
			College:   domain.NamedRef{ID: "c1", Name: "College of Technology"},
			BatchYear: 2023,
		},
		LastActive:     now,
		ShowOnboarding: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestUserCreateAndLookups(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(1001, "alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Username, byID.Username)
	require.Equal(t, u.Academic.College, byID.Academic.College)
	require.Nil(t, byID.FailedLogin)

	byName, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byEmail, err := s.Users().GetUserByEmail(ctx, "alice@campus.edu")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = s.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserUniqueConstraints(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().CreateUser(ctx, testUser(1001, "alice")))

	dupUsername := testUser(1002, "alice")
	require.ErrorIs(t, s.Users().CreateUser(ctx, dupUsername), store.ErrAlreadyExists)

	dupCampusID := testUser(1001, "bob")
	require.ErrorIs(t, s.Users().CreateUser(ctx, dupCampusID), store.ErrAlreadyExists)

	dupEmail := testUser(1003, "carol")
	dupEmail.Email = "alice@campus.edu"
	require.ErrorIs(t, s.Users().CreateUser(ctx, dupEmail), store.ErrAlreadyExists)

	taken, err := s.Users().EmailTaken(ctx, "alice@campus.edu")
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = s.Users().UsernameTaken(ctx, "bob")
	require.NoError(t, err)
	require.False(t, taken)

	taken, err = s.Users().CampusIDTaken(ctx, 1001)
	require.NoError(t, err)
	require.True(t, taken)
}

func TestUserPatch(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(1001, "alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	verified := true
	failed := &domain.FailedLogin{Times: 3, LastFailedAttempt: time.Now().UTC()}
	require.NoError(t, s.Users().UpdateUser(ctx, u.ID, domain.UserPatch{
		IsEmailVerified: &verified,
		FailedLogin:     failed,
	}))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.IsEmailVerified)
	require.NotNil(t, got.FailedLogin)
	require.Equal(t, 3, got.FailedLogin.Times)

	require.NoError(t, s.Users().UpdateUser(ctx, u.ID, domain.UserPatch{ClearFailedLogin: true}))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.FailedLogin)

	err = s.Users().UpdateUser(ctx, "missing", domain.UserPatch{ClearFailedLogin: true})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(1001, "alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "hash-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))

	dup := rt
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.RefreshTokens().CreateRefreshToken(ctx, dup), store.ErrAlreadyExists)

	got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)

	require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, u.ID, "hash-1"))

	// Deleting an absent row is a hard error, not a no-op.
	err = s.RefreshTokens().DeleteRefreshToken(ctx, u.ID, "hash-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteAllUserRefreshTokensIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(1001, "alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	for i, hash := range []string{"h1", "h2", "h3"} {
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: hash,
			ExpiresAt: now.Add(time.Duration(i+1) * time.Hour),
			CreatedAt: now,
		}))
	}

	require.NoError(t, s.RefreshTokens().DeleteAllUserRefreshTokens(ctx, u.ID))
	require.NoError(t, s.RefreshTokens().DeleteAllUserRefreshTokens(ctx, u.ID))

	for _, hash := range []string{"h1", "h2", "h3"} {
		_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		require.ErrorIs(t, err, store.ErrNotFound)
	}
}

func TestDeleteExpiredRefreshTokens(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(1001, "alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	expired := domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "old",
		ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour),
	}
	live := domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "new",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, expired))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, live))

	require.NoError(t, s.RefreshTokens().DeleteExpiredRefreshTokens(ctx))

	_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "old")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "new")
	require.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(1001, "alice")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return context.Canceled // force rollback
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
