package repository

import (
	"context"

	"github.com/lindero/lindero-auth/internal/domain"
)

// UserRepository exposes persistence for user identities. Mutations that the
// product audits take the audit record alongside the change; implementations
// must commit both or neither.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID int64) (domain.User, error)
	// Register inserts the user row and its audit record in one transaction.
	// A duplicate email yields domain.ErrEmailTaken.
	Register(ctx context.Context, user domain.User, audit domain.AuditRecord) (domain.User, error)
	// UpdateProfile applies the patch and writes the audit record in one
	// transaction, returning the updated row.
	UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch, audit domain.AuditRecord) (domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// RefreshTokenRepository handles long-lived credential persistence.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token domain.RefreshToken) error
	GetByToken(ctx context.Context, token string) (domain.RefreshToken, error)
	Rotate(ctx context.Context, tokenID int64, nextToken string, expiresAt int64) error
	Revoke(ctx context.Context, tokenID int64) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// ResetTokenStore keeps short-lived password-reset tokens. Lookups for
// unknown or expired tokens return ("", domain.ErrNotFound)-style misses as
// a nil error with found=false.
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID int64) error
	// Consume resolves and deletes the token in one step.
	Consume(ctx context.Context, token string) (userID int64, found bool, err error)
}
