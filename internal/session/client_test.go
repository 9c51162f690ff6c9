package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lindero/lindero-auth/internal/domain"
	"github.com/lindero/lindero-auth/internal/session"
	"github.com/lindero/lindero-auth/internal/token"
	"github.com/lindero/lindero-auth/internal/validate"
)

type fakeGateway struct {
	calls int

	loginFn       func(validate.LoginData) (session.Envelope, error)
	registerFn    func(validate.RegisterData) (string, error)
	refreshFn     func(string) (session.Envelope, error)
	resetFn       func(validate.PasswordResetData) (string, error)
	updatePassFn  func(string, validate.PasswordUpdateData) (string, error)
	currentUserFn func(string) (session.User, error)
	updateProfFn  func(string, validate.ProfileData) (session.User, error)
}

func (f *fakeGateway) Login(ctx context.Context, data validate.LoginData) (session.Envelope, error) {
	f.calls++
	return f.loginFn(data)
}

func (f *fakeGateway) Register(ctx context.Context, data validate.RegisterData) (string, error) {
	f.calls++
	return f.registerFn(data)
}

func (f *fakeGateway) Refresh(ctx context.Context, refreshToken string) (session.Envelope, error) {
	f.calls++
	return f.refreshFn(refreshToken)
}

func (f *fakeGateway) RequestPasswordReset(ctx context.Context, data validate.PasswordResetData) (string, error) {
	f.calls++
	return f.resetFn(data)
}

func (f *fakeGateway) UpdatePassword(ctx context.Context, accessToken string, data validate.PasswordUpdateData) (string, error) {
	f.calls++
	return f.updatePassFn(accessToken, data)
}

func (f *fakeGateway) CurrentUser(ctx context.Context, accessToken string) (session.User, error) {
	f.calls++
	return f.currentUserFn(accessToken)
}

func (f *fakeGateway) UpdateProfile(ctx context.Context, accessToken string, data validate.ProfileData) (session.User, error) {
	f.calls++
	return f.updateProfFn(accessToken, data)
}

func TestLoginPersistsEnvelope(t *testing.T) {
	gw := &fakeGateway{
		loginFn: func(data validate.LoginData) (session.Envelope, error) {
			return session.Envelope{
				Token: "T",
				User:  session.User{ID: "1", Email: "a@b.com", Name: "A"},
			}, nil
		},
	}
	store := session.NewMemStore()
	client := session.NewClient(gw, store, nil)

	err := client.Login(context.Background(), validate.LoginData{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	state := client.State()
	require.True(t, state.Authenticated)
	require.False(t, state.Loading)
	require.Empty(t, state.Err)
	require.NotNil(t, state.User)
	require.Equal(t, "1", state.User.ID)

	env, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "T", env.Token)
	require.Equal(t, "1", env.User.ID)
}

func TestLoginRoundTripWithRealToken(t *testing.T) {
	issuer := token.NewIssuer([]byte("test-secret-test-secret-test-secret!"), "https://auth.test", time.Minute)
	signed, err := issuer.Sign(domain.User{ID: 1, Email: "a@b.com", Name: "A"})
	require.NoError(t, err)

	gw := &fakeGateway{
		loginFn: func(validate.LoginData) (session.Envelope, error) {
			return session.Envelope{Token: signed, User: session.User{ID: "1", Email: "a@b.com", Name: "A"}}, nil
		},
	}
	store := session.NewMemStore()
	client := session.NewClient(gw, store, nil)

	require.NoError(t, client.Login(context.Background(), validate.LoginData{Email: "a@b.com", Password: "secret1"}))

	env, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", env.User.ID)
	require.False(t, token.Expired(env.Token, time.Now()))
	require.True(t, client.IsAuthenticated())
}

func TestLoginFailureSurfacesGatewayMessage(t *testing.T) {
	gw := &fakeGateway{
		loginFn: func(validate.LoginData) (session.Envelope, error) {
			return session.Envelope{}, &session.GatewayError{Status: 401, Code: "invalid_credentials", Message: "Wrong email or password."}
		},
	}
	client := session.NewClient(gw, session.NewMemStore(), nil)

	err := client.Login(context.Background(), validate.LoginData{Email: "a@b.com", Password: "secret1"})
	require.Error(t, err)

	state := client.State()
	require.False(t, state.Authenticated)
	require.Nil(t, state.User)
	require.Equal(t, "Wrong email or password.", state.Err)
}

func TestRegisterShortPasswordNeverHitsGateway(t *testing.T) {
	gw := &fakeGateway{}
	client := session.NewClient(gw, session.NewMemStore(), nil)

	_, err := client.Register(context.Background(), validate.RegisterData{
		Email:           "x@x.com",
		Password:        "abc",
		ConfirmPassword: "abc",
		Name:            "Xavier",
	})
	require.Error(t, err)
	require.Zero(t, gw.calls)
	require.Contains(t, client.State().Err, "Password must be at least 6 characters")
}

func TestRegisterConflict(t *testing.T) {
	gw := &fakeGateway{
		registerFn: func(validate.RegisterData) (string, error) {
			return "", &session.GatewayError{Status: 409, Code: "email_taken", Message: "Email already registered."}
		},
	}
	client := session.NewClient(gw, session.NewMemStore(), nil)

	_, err := client.Register(context.Background(), validate.RegisterData{
		Email:           "x@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Name:            "Xavier",
	})
	require.Error(t, err)

	state := client.State()
	require.False(t, state.Authenticated)
	require.Equal(t, "Email already registered.", state.Err)
}

func TestRegisterSuccessIssuesNoSession(t *testing.T) {
	gw := &fakeGateway{
		registerFn: func(validate.RegisterData) (string, error) {
			return "User registered successfully.", nil
		},
	}
	store := session.NewMemStore()
	client := session.NewClient(gw, store, nil)

	message, err := client.Register(context.Background(), validate.RegisterData{
		Email:           "x@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Name:            "Xavier",
	})
	require.NoError(t, err)
	require.Equal(t, "User registered successfully.", message)

	state := client.State()
	require.False(t, state.Authenticated)
	require.Nil(t, state.User)
	require.Empty(t, state.Err)
	_, found, _ := store.Load()
	require.False(t, found)
}

func TestUpdatePasswordSameAsCurrentNeverHitsGateway(t *testing.T) {
	gw := &fakeGateway{}
	client := session.NewClient(gw, session.NewMemStore(), nil)

	_, err := client.UpdatePassword(context.Background(), validate.PasswordUpdateData{
		CurrentPassword: "secret1",
		NewPassword:     "secret1",
		ConfirmPassword: "secret1",
	})
	require.Error(t, err)
	require.Zero(t, gw.calls)
	require.Contains(t, client.State().Err, "New password must differ")
}

func TestInitializeSilentlyDropsDeadSession(t *testing.T) {
	gw := &fakeGateway{
		currentUserFn: func(string) (session.User, error) {
			return session.User{}, &session.GatewayError{Status: 401, Code: "invalid_token", Message: "Invalid access token."}
		},
	}
	store := session.NewMemStore()
	issuer := token.NewIssuer([]byte("test-secret-test-secret-test-secret!"), "https://auth.test", time.Minute)
	signed, err := issuer.Sign(domain.User{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)
	require.NoError(t, store.Save(session.Envelope{Token: signed, User: session.User{ID: "1"}}))

	client := session.NewClient(gw, store, nil)
	require.NoError(t, client.Initialize(context.Background()))

	state := client.State()
	require.False(t, state.Authenticated)
	require.Nil(t, state.User)
	require.Empty(t, state.Err)

	_, found, _ := store.Load()
	require.False(t, found)
}

func TestInitializeFetchesFreshUser(t *testing.T) {
	issuer := token.NewIssuer([]byte("test-secret-test-secret-test-secret!"), "https://auth.test", time.Minute)
	signed, err := issuer.Sign(domain.User{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	gw := &fakeGateway{
		currentUserFn: func(string) (session.User, error) {
			return session.User{ID: "1", Email: "a@b.com", Name: "Fresh Name"}, nil
		},
	}
	store := session.NewMemStore()
	require.NoError(t, store.Save(session.Envelope{Token: signed, User: session.User{ID: "1", Name: "Stale Name"}}))

	client := session.NewClient(gw, store, nil)
	require.NoError(t, client.Initialize(context.Background()))

	state := client.State()
	require.True(t, state.Authenticated)
	require.Equal(t, "Fresh Name", state.User.Name)

	env, found, _ := store.Load()
	require.True(t, found)
	require.Equal(t, "Fresh Name", env.User.Name)
}

func TestInitializeRefreshesExpiredToken(t *testing.T) {
	issuer := token.NewIssuer([]byte("test-secret-test-secret-test-secret!"), "https://auth.test", -time.Minute)
	expired, err := issuer.Sign(domain.User{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	fresh := token.NewIssuer([]byte("test-secret-test-secret-test-secret!"), "https://auth.test", time.Minute)
	renewed, err := fresh.Sign(domain.User{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	gw := &fakeGateway{
		refreshFn: func(refreshToken string) (session.Envelope, error) {
			return session.Envelope{Token: renewed, RefreshToken: "next-refresh", User: session.User{ID: "1"}}, nil
		},
		currentUserFn: func(string) (session.User, error) {
			return session.User{ID: "1", Email: "a@b.com"}, nil
		},
	}
	store := session.NewMemStore()
	require.NoError(t, store.Save(session.Envelope{Token: expired, RefreshToken: "refresh-1", User: session.User{ID: "1"}}))

	client := session.NewClient(gw, store, nil)
	require.NoError(t, client.Initialize(context.Background()))
	require.True(t, client.State().Authenticated)

	env, found, _ := store.Load()
	require.True(t, found)
	require.Equal(t, "next-refresh", env.RefreshToken)
}

func TestLogoutClearsEverything(t *testing.T) {
	gw := &fakeGateway{
		loginFn: func(validate.LoginData) (session.Envelope, error) {
			return session.Envelope{Token: "T", User: session.User{ID: "1"}}, nil
		},
	}
	store := session.NewMemStore()
	client := session.NewClient(gw, store, nil)
	require.NoError(t, client.Login(context.Background(), validate.LoginData{Email: "a@b.com", Password: "secret1"}))

	require.NoError(t, client.Logout())
	require.Zero(t, client.State())
	_, found, _ := store.Load()
	require.False(t, found)
}

func TestClearErrorIdempotent(t *testing.T) {
	client := session.NewClient(&fakeGateway{}, session.NewMemStore(), nil)

	before := client.State()
	client.ClearError()
	require.Equal(t, before, client.State())

	// And it removes an error when one is present.
	err := client.Login(context.Background(), validate.LoginData{})
	require.Error(t, err)
	require.NotEmpty(t, client.State().Err)
	client.ClearError()
	require.Empty(t, client.State().Err)
}

func TestUpdateProfilePersistsNewSnapshot(t *testing.T) {
	gw := &fakeGateway{
		loginFn: func(validate.LoginData) (session.Envelope, error) {
			return session.Envelope{Token: "T", User: session.User{ID: "1", Email: "a@b.com", Name: "A"}}, nil
		},
		updateProfFn: func(accessToken string, data validate.ProfileData) (session.User, error) {
			return session.User{ID: "1", Email: data.Email, Name: data.Name, Bio: data.Bio}, nil
		},
	}
	store := session.NewMemStore()
	client := session.NewClient(gw, store, nil)
	require.NoError(t, client.Login(context.Background(), validate.LoginData{Email: "a@b.com", Password: "secret1"}))

	err := client.UpdateProfile(context.Background(), validate.ProfileData{
		Name:  "New Name",
		Email: "a@b.com",
		Bio:   "hello",
	})
	require.NoError(t, err)

	state := client.State()
	require.True(t, state.Authenticated)
	require.Equal(t, "New Name", state.User.Name)

	env, found, _ := store.Load()
	require.True(t, found)
	require.Equal(t, "New Name", env.User.Name)
	require.Equal(t, "T", env.Token)
}

func TestGatewayErrorWithoutMessageFallsBack(t *testing.T) {
	gw := &fakeGateway{
		loginFn: func(validate.LoginData) (session.Envelope, error) {
			return session.Envelope{}, &session.GatewayError{Status: 502}
		},
	}
	client := session.NewClient(gw, session.NewMemStore(), nil)

	err := client.Login(context.Background(), validate.LoginData{Email: "a@b.com", Password: "secret1"})
	require.Error(t, err)
	require.Equal(t, "Something went wrong. Please try again.", client.State().Err)
}
