package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindero/lindero-auth/internal/domain"
	"github.com/lindero/lindero-auth/internal/repository"
)

var userCols = []string{"id", "email", "password_hash", "name", "phone", "bio", "is_active", "created_at", "updated_at"}

func userRow(mock pgxmock.PgxPoolIface, u domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userCols).AddRow(
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Bio, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
}

func testUser() domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           7,
		Email:        "a@b.com",
		PasswordHash: "$argon2id$hash",
		Name:         "Ana",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testAudit() domain.AuditRecord {
	return domain.AuditRecord{
		ID:         8,
		OccurredAt: time.Now().UTC(),
		View:       "/register",
		Event:      domain.AuditEventInsert,
		Element:    "register-form-submit",
		After:      `{"id":7}`,
	}
}

func TestRegisterCommitsUserAndAudit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	user := testUser()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.ID, user.Email, user.PasswordHash, user.Name, user.Phone, user.Bio, user.IsActive).
		WillReturnRows(userRow(mock, user))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "/register", "insert", "register-form-submit", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := repository.NewPostgresUserRepo(mock)
	created, err := repo.Register(context.Background(), user, testAudit())
	require.NoError(t, err)
	require.Equal(t, user.ID, created.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRollsBackWhenAuditFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	user := testUser()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.ID, user.Email, user.PasswordHash, user.Name, user.Phone, user.Bio, user.IsActive).
		WillReturnRows(userRow(mock, user))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "/register", "insert", "register-form-submit", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := repository.NewPostgresUserRepo(mock)
	_, err = repo.Register(context.Background(), user, testAudit())
	require.Error(t, err)
	require.Contains(t, err.Error(), "audit")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	user := testUser()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.ID, user.Email, user.PasswordHash, user.Name, user.Phone, user.Bio, user.IsActive).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	repo := repository.NewPostgresUserRepo(mock)
	_, err = repo.Register(context.Background(), user, testAudit())
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE lower\(email\)`).
		WithArgs("ghost@b.com").
		WillReturnRows(pgxmock.NewRows(userCols))

	repo := repository.NewPostgresUserRepo(mock)
	_, err = repo.GetByEmail(context.Background(), "ghost@b.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProfileAuditedInTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	user := testUser()
	patch := domain.ProfilePatch{Name: "Ana Maria", Email: "a@b.com", Phone: "+5215512345678", Bio: "bio"}
	updated := user
	updated.Name = patch.Name
	updated.Phone = patch.Phone
	updated.Bio = patch.Bio

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE users`).
		WithArgs(user.ID, patch.Name, patch.Email, patch.Phone, patch.Bio).
		WillReturnRows(userRow(mock, updated))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "/profile", "update", "profile-form-submit", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	audit := testAudit()
	audit.View = "/profile"
	audit.Event = domain.AuditEventUpdate
	audit.Element = "profile-form-submit"

	repo := repository.NewPostgresUserRepo(mock)
	got, err := repo.UpdateProfile(context.Background(), user.ID, patch, audit)
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", got.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordMissingUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs(int64(99), "hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := repository.NewPostgresUserRepo(mock)
	err = repo.UpdatePassword(context.Background(), 99, "hash")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRefreshTokenRotate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE refresh_tokens SET token`).
		WithArgs(int64(5), "next-token", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := repository.NewPostgresRefreshTokenRepo(mock)
	require.NoError(t, repo.Rotate(context.Background(), 5, "next-token", time.Now().Add(time.Hour).Unix()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
