package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lindero/lindero-auth/internal/domain"
)

// DB is the subset of pgxpool.Pool the repositories need. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Compile-time interface assertions.
var (
	_ UserRepository         = (*PostgresUserRepo)(nil)
	_ RefreshTokenRepository = (*PostgresRefreshTokenRepo)(nil)
)

const userColumns = `id, email, password_hash, name, phone, bio, is_active, created_at, updated_at`

const (
	selectUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	selectUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	insertUserSQL = `INSERT INTO users (id, email, password_hash, name, phone, bio, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

	updateProfileSQL = `UPDATE users
SET name = $2, email = $3, phone = $4, bio = $5, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

	updatePasswordSQL = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`

	insertAuditSQL = `INSERT INTO audit_log (id, occurred_at, actor_id, view, event, element, before_value, after_value)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// PostgresUserRepo implements UserRepository on pgx.
type PostgresUserRepo struct {
	db DB
}

func NewPostgresUserRepo(db DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserByEmailSQL, email))
	if err != nil {
		return domain.User{}, mapUserError("get user by email", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserByIDSQL, userID))
	if err != nil {
		return domain.User{}, mapUserError("get user by id", err)
	}
	return user, nil
}

// Register inserts the user and its audit record inside one transaction so a
// failed audit write rolls the registration back.
func (r *PostgresUserRepo) Register(ctx context.Context, user domain.User, audit domain.AuditRecord) (domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin register: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanUser(tx.QueryRow(ctx, insertUserSQL,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Phone, user.Bio, user.IsActive,
	))
	if err != nil {
		return domain.User{}, mapUserError("insert user", err)
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return domain.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, fmt.Errorf("commit register: %w", err)
	}
	return created, nil
}

// UpdateProfile applies the patch and audits it in one transaction.
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch, audit domain.AuditRecord) (domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin profile update: %w", err)
	}
	defer tx.Rollback(ctx)

	updated, err := scanUser(tx.QueryRow(ctx, updateProfileSQL,
		userID, patch.Name, patch.Email, patch.Phone, patch.Bio,
	))
	if err != nil {
		return domain.User{}, mapUserError("update profile", err)
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return domain.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, fmt.Errorf("commit profile update: %w", err)
	}
	return updated, nil
}

func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, updatePasswordSQL, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func insertAudit(ctx context.Context, tx pgx.Tx, audit domain.AuditRecord) error {
	occurredAt := audit.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	if _, err := tx.Exec(ctx, insertAuditSQL,
		audit.ID, occurredAt, audit.ActorID, audit.View, audit.Event, audit.Element, audit.Before, audit.After,
	); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.Bio, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func mapUserError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return domain.ErrEmailTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

// PostgresRefreshTokenRepo implements RefreshTokenRepository.
type PostgresRefreshTokenRepo struct {
	db DB
}

func NewPostgresRefreshTokenRepo(db DB) *PostgresRefreshTokenRepo {
	return &PostgresRefreshTokenRepo{db: db}
}

const refreshColumns = `id, user_id, token, expires_at, revoked, created_at`

func (r *PostgresRefreshTokenRepo) Create(ctx context.Context, token domain.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, query, token.ID, token.UserID, token.Token, token.ExpiresAt); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *PostgresRefreshTokenRepo) GetByToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	const query = `SELECT ` + refreshColumns + ` FROM refresh_tokens WHERE token = $1`
	var t domain.RefreshToken
	err := r.db.QueryRow(ctx, query, token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RefreshToken{}, domain.ErrNotFound
		}
		return domain.RefreshToken{}, fmt.Errorf("get refresh token: %w", err)
	}
	return t, nil
}

func (r *PostgresRefreshTokenRepo) Rotate(ctx context.Context, tokenID int64, nextToken string, expiresAt int64) error {
	const query = `UPDATE refresh_tokens SET token = $2, expires_at = $3 WHERE id = $1 AND NOT revoked`
	tag, err := r.db.Exec(ctx, query, tokenID, nextToken, time.Unix(expiresAt, 0))
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRefreshTokenRepo) Revoke(ctx context.Context, tokenID int64) error {
	const query = `UPDATE refresh_tokens SET revoked = true WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, tokenID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *PostgresRefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	const query = `UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND NOT revoked`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}
