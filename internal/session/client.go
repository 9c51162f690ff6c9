package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lindero/lindero-auth/internal/token"
	"github.com/lindero/lindero-auth/internal/validate"
)

// genericErrorMessage covers transport faults and unparsable gateway
// responses.
const genericErrorMessage = "Something went wrong. Please try again."

// Client drives the session lifecycle. One Client per logical session;
// mutating operations are expected to be serialized by the caller, the
// client only guarantees that each transition is applied atomically.
type Client struct {
	gateway Gateway
	store   CredentialStore
	logger  *zap.Logger

	mu    sync.Mutex
	state State
}

// NewClient builds a session client. Both ports are required; logger may be
// nil.
func NewClient(gateway Gateway, store CredentialStore, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gateway: gateway, store: store, logger: logger}
}

// State returns a copy of the current session state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// CurrentUser returns a copy of the user snapshot, or nil when signed out.
func (c *Client) CurrentUser() *User {
	s := c.State()
	return s.User
}

// IsAuthenticated reports whether a user is present and a non-expired access
// token is held.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	authenticated := c.state.Authenticated && c.state.User != nil
	c.mu.Unlock()
	if !authenticated {
		return false
	}
	env, found, err := c.store.Load()
	if err != nil || !found {
		return false
	}
	return !token.Expired(env.Token, time.Now())
}

// Initialize restores a persisted session. The cached user snapshot is only
// a hint; the authoritative profile is fetched from the gateway. Any failure
// degrades silently to unauthenticated with the stored credentials cleared.
func (c *Client) Initialize(ctx context.Context) error {
	env, found, err := c.store.Load()
	if err != nil || !found {
		if err != nil {
			c.logger.Warn("credential load failed", zap.Error(err))
			_ = c.store.Clear()
		}
		c.setState(State{})
		return nil
	}

	if token.Expired(env.Token, time.Now()) && env.RefreshToken != "" {
		refreshed, err := c.gateway.Refresh(ctx, env.RefreshToken)
		if err != nil {
			c.dropSession()
			return nil
		}
		if err := c.store.Save(refreshed); err != nil {
			c.dropSession()
			return nil
		}
		env = refreshed
	}

	user, err := c.gateway.CurrentUser(ctx, env.Token)
	if err != nil {
		c.dropSession()
		return nil
	}

	env.User = user
	if err := c.store.Save(env); err != nil {
		c.dropSession()
		return nil
	}
	c.setState(State{}.success(user))
	return nil
}

// Login authenticates and persists the credential envelope.
func (c *Client) Login(ctx context.Context, data validate.LoginData) error {
	if res := validate.Login(data); !res.Valid() {
		return c.failValidation(res)
	}
	c.transition(func(s State) State { return s.start() })

	env, err := c.gateway.Login(ctx, data)
	if err != nil {
		return c.failRemote(err)
	}
	if err := c.store.Save(env); err != nil {
		return c.failRemote(err)
	}
	c.transition(func(s State) State { return s.success(env.User) })
	return nil
}

// Register creates the account. No session is issued; the state settles
// unauthenticated without an error and the caller logs in next.
func (c *Client) Register(ctx context.Context, data validate.RegisterData) (string, error) {
	if res := validate.Register(data); !res.Valid() {
		return "", c.failValidation(res)
	}
	c.transition(func(s State) State { return s.start() })

	message, err := c.gateway.Register(ctx, data)
	if err != nil {
		return "", c.failRemote(err)
	}
	c.transition(func(s State) State { return s.settle() })
	return message, nil
}

// Logout discards the persisted credentials and resets the state. Local
// only, no gateway call.
func (c *Client) Logout() error {
	err := c.store.Clear()
	c.setState(State{}.logout())
	return err
}

// ResetPassword requests reset instructions for the account.
func (c *Client) ResetPassword(ctx context.Context, data validate.PasswordResetData) (string, error) {
	if res := validate.PasswordReset(data); !res.Valid() {
		return "", c.failValidation(res)
	}
	c.transition(func(s State) State { return s.start() })

	message, err := c.gateway.RequestPasswordReset(ctx, data)
	if err != nil {
		return "", c.failRemote(err)
	}
	c.transition(func(s State) State { return s.settle() })
	return message, nil
}

// UpdatePassword changes the password, with the current password or with a
// reset token carried in data.
func (c *Client) UpdatePassword(ctx context.Context, data validate.PasswordUpdateData) (string, error) {
	if res := validate.PasswordUpdate(data); !res.Valid() {
		return "", c.failValidation(res)
	}
	c.transition(func(s State) State { return s.start() })

	accessToken := ""
	if data.Token == "" {
		env, found, err := c.store.Load()
		if err != nil || !found {
			c.transition(func(s State) State { return s.failure(genericErrorMessage) })
			return "", errors.New(genericErrorMessage)
		}
		accessToken = env.Token
	}

	message, err := c.gateway.UpdatePassword(ctx, accessToken, data)
	if err != nil {
		return "", c.failRemote(err)
	}
	c.transition(func(s State) State { return s.settle() })
	return message, nil
}

// UpdateProfile edits the profile and refreshes the persisted snapshot.
func (c *Client) UpdateProfile(ctx context.Context, data validate.ProfileData) error {
	if res := validate.Profile(data); !res.Valid() {
		return c.failValidation(res)
	}
	c.transition(func(s State) State { return s.start() })

	env, found, err := c.store.Load()
	if err != nil || !found {
		c.transition(func(s State) State { return s.failure(genericErrorMessage) })
		return errors.New(genericErrorMessage)
	}

	user, err := c.gateway.UpdateProfile(ctx, env.Token, data)
	if err != nil {
		return c.failRemote(err)
	}

	env.User = user
	if err := c.store.Save(env); err != nil {
		return c.failRemote(err)
	}
	c.transition(func(s State) State { return s.profileUpdated(user) })
	return nil
}

// Refresh rotates the credential envelope using the stored refresh token.
func (c *Client) Refresh(ctx context.Context) error {
	env, found, err := c.store.Load()
	if err != nil || !found || env.RefreshToken == "" {
		c.dropSession()
		return errors.New(genericErrorMessage)
	}
	c.transition(func(s State) State { return s.start() })

	refreshed, err := c.gateway.Refresh(ctx, env.RefreshToken)
	if err != nil {
		c.dropSession()
		return err
	}
	if err := c.store.Save(refreshed); err != nil {
		return c.failRemote(err)
	}
	c.transition(func(s State) State { return s.success(refreshed.User) })
	return nil
}

// ClearError removes the last error message. Idempotent.
func (c *Client) ClearError() {
	c.transition(func(s State) State { return s.clearError() })
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) transition(apply func(State) State) {
	c.mu.Lock()
	c.state = apply(c.state)
	c.mu.Unlock()
}

// dropSession clears persisted credentials and settles unauthenticated with
// no error surfaced.
func (c *Client) dropSession() {
	_ = c.store.Clear()
	c.setState(State{})
}

func (c *Client) failValidation(res validate.Result) error {
	message := res.Message()
	c.transition(func(s State) State { return s.failure(message) })
	return errors.New(message)
}

func (c *Client) failRemote(err error) error {
	message := errorMessage(err)
	c.transition(func(s State) State { return s.failure(message) })
	return err
}

// errorMessage extracts the human-readable message from a gateway failure,
// degrading to the generic message for transport faults or empty bodies.
func errorMessage(err error) string {
	var gw *GatewayError
	if errors.As(err, &gw) && gw.Message != "" {
		return gw.Message
	}
	return genericErrorMessage
}
