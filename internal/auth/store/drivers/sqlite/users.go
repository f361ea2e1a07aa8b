package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/domain"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, campus_id, username, email, password_hash, is_email_verified,
	first_name, last_name, profile_picture, bio, academic, role,
	failed_login_times, failed_login_last_attempt,
	is_deleted, is_permanent_blocked, is_temporary_blocked, last_active,
	sent_connections, received_connections, connection_list, show_onboarding,
	created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	var failedTimes sql.NullInt64
	var failedAt sql.NullTime
	if u.FailedLogin != nil {
		failedTimes = sql.NullInt64{Int64: int64(u.FailedLogin.Times), Valid: true}
		failedAt = sql.NullTime{Time: u.FailedLogin.LastFailedAttempt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (
			id, campus_id, username, email, password_hash, is_email_verified,
			first_name, last_name, profile_picture, bio, academic, role,
			failed_login_times, failed_login_last_attempt,
			is_deleted, is_permanent_blocked, is_temporary_blocked, last_active,
			sent_connections, received_connections, connection_list, show_onboarding,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.CampusID, u.Username, u.Email, u.PasswordHash, u.IsEmailVerified,
		u.FirstName, u.LastName, u.ProfilePicture, u.Bio, marshalJSON(u.Academic), string(u.Role),
		failedTimes, failedAt,
		u.IsDeleted, u.IsPermanentBlocked, u.IsTemporaryBlocked, u.LastActive,
		marshalJSON(u.SentConnections), marshalJSON(u.ReceivedConnections),
		marshalJSON(u.ConnectionList), u.ShowOnboarding,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, userID string, p domain.UserPatch) error {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 8)

	if p.IsEmailVerified != nil {
		sets = append(sets, "is_email_verified = ?")
		args = append(args, *p.IsEmailVerified)
	}
	if p.ClearFailedLogin {
		sets = append(sets, "failed_login_times = NULL", "failed_login_last_attempt = NULL")
	} else if p.FailedLogin != nil {
		sets = append(sets, "failed_login_times = ?", "failed_login_last_attempt = ?")
		args = append(args, p.FailedLogin.Times, p.FailedLogin.LastFailedAttempt)
	}
	if p.LastActive != nil {
		sets = append(sets, "last_active = ?")
		args = append(args, *p.LastActive)
	}
	if p.IsDeleted != nil {
		sets = append(sets, "is_deleted = ?")
		args = append(args, *p.IsDeleted)
	}
	if p.ShowOnboarding != nil {
		sets = append(sets, "show_onboarding = ?")
		args = append(args, *p.ShowOnboarding)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), userID)

	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *usersRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email)
}

func (r *usersRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(1) FROM users WHERE username = ?`, username)
}

func (r *usersRepo) CampusIDTaken(ctx context.Context, campusID int64) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(1) FROM users WHERE campus_id = ?`, campusID)
}

func (r *usersRepo) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, query, arg).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u           domain.User
		role        string
		academic    string
		sent        string
		received    string
		connections string
		failedTimes sql.NullInt64
		failedAt    sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.CampusID, &u.Username, &u.Email, &u.PasswordHash, &u.IsEmailVerified,
		&u.FirstName, &u.LastName, &u.ProfilePicture, &u.Bio, &academic, &role,
		&failedTimes, &failedAt,
		&u.IsDeleted, &u.IsPermanentBlocked, &u.IsTemporaryBlocked, &u.LastActive,
		&sent, &received, &connections, &u.ShowOnboarding,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.Academic = unmarshalAcademic(academic)
	u.SentConnections = unmarshalConnections(sent)
	u.ReceivedConnections = unmarshalConnections(received)
	u.ConnectionList = unmarshalConnections(connections)

	if failedTimes.Valid {
		u.FailedLogin = &domain.FailedLogin{
			Times: int(failedTimes.Int64),
		}
		if failedAt.Valid {
			u.FailedLogin.LastFailedAttempt = failedAt.Time
		}
	}

	return u, nil
}
