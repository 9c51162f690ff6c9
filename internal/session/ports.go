package session

import (
	"context"

	"github.com/lindero/lindero-auth/internal/validate"
)

// Gateway is the remote contract the session client depends on. Every call
// is a single request/response; failures surface as *GatewayError where the
// remote answered, or as plain errors for transport faults.
type Gateway interface {
	Login(ctx context.Context, data validate.LoginData) (Envelope, error)
	// Register creates the account. No session is issued; the caller logs
	// in afterwards.
	Register(ctx context.Context, data validate.RegisterData) (string, error)
	Refresh(ctx context.Context, refreshToken string) (Envelope, error)
	RequestPasswordReset(ctx context.Context, data validate.PasswordResetData) (string, error)
	// UpdatePassword uses the reset-token path when data.Token is set and
	// the authenticated path (bearer accessToken) otherwise.
	UpdatePassword(ctx context.Context, accessToken string, data validate.PasswordUpdateData) (string, error)
	CurrentUser(ctx context.Context, accessToken string) (User, error)
	UpdateProfile(ctx context.Context, accessToken string, data validate.ProfileData) (User, error)
}

// CredentialStore persists the credential envelope between process runs.
// Load tolerates absence; Save and Clear are atomic with respect to the
// three persisted values.
type CredentialStore interface {
	Load() (Envelope, bool, error)
	Save(env Envelope) error
	Clear() error
}
