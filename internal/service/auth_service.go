// Package service implements the authentication flows behind the REST
// gateway: login, registration, token refresh, password reset and update,
// and profile management.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lindero/lindero-auth/internal/config"
	"github.com/lindero/lindero-auth/internal/domain"
	pw "github.com/lindero/lindero-auth/internal/password"
	"github.com/lindero/lindero-auth/internal/repository"
	"github.com/lindero/lindero-auth/internal/token"
	"github.com/lindero/lindero-auth/internal/validate"
)

const redactedPassword = "[REDACTED]"

// AuthService encapsulates authentication flows.
type AuthService struct {
	users     repository.UserRepository
	refresh   repository.RefreshTokenRepository
	resets    repository.ResetTokenStore
	snowflake *snowflake.Node
	tokens    *token.Issuer
	cfg       config.Config
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, refresh repository.RefreshTokenRepository, resets repository.ResetTokenStore, node *snowflake.Node, issuer *token.Issuer, cfg config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		refresh:   refresh,
		resets:    resets,
		snowflake: node,
		tokens:    issuer,
		cfg:       cfg,
		logger:    logger,
		tracer:    otel.Tracer("github.com/lindero/lindero-auth/internal/service"),
	}
}

// Login authenticates with email/password and issues a credential envelope.
func (s *AuthService) Login(ctx context.Context, data validate.LoginData) (AuthResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	if res := validate.Login(data); !res.Valid() {
		return AuthResponse{}, validationError(res)
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(data.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return AuthResponse{}, invalidCredentials()
		}
		span.RecordError(err)
		return AuthResponse{}, fmt.Errorf("login lookup: %w", err)
	}

	ok, err := pw.Verify(data.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResponse{}, invalidCredentials()
	}
	if !user.IsActive {
		return AuthResponse{}, invalidCredentials()
	}

	resp, err := s.issueCredentials(ctx, user)
	if err != nil {
		span.RecordError(err)
		return AuthResponse{}, err
	}

	s.audit("login.success", "user_id", user.ID)
	return resp, nil
}

// Register creates the user and its audit record. No session is issued.
func (s *AuthService) Register(ctx context.Context, data validate.RegisterData) (RegisterResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Register")
	defer span.End()

	if res := validate.Register(data); !res.Valid() {
		return RegisterResponse{}, validationError(res)
	}

	hashed, err := pw.Hash(data.Password)
	if err != nil {
		span.RecordError(err)
		return RegisterResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           s.snowflake.Generate().Int64(),
		Email:        normalizeEmail(data.Email),
		PasswordHash: hashed,
		Name:         strings.TrimSpace(data.Name),
		IsActive:     true,
	}

	audit := domain.AuditRecord{
		ID:         s.snowflake.Generate().Int64(),
		OccurredAt: time.Now().UTC(),
		ActorID:    nil, // self-registration has no acting user
		View:       "/register",
		Event:      domain.AuditEventInsert,
		Element:    "register-form-submit",
		Before:     nil,
		After:      redactUser(user),
	}

	created, err := s.users.Register(ctx, user, audit)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return RegisterResponse{}, emailConflict()
		}
		span.RecordError(err)
		return RegisterResponse{}, fmt.Errorf("register user: %w", err)
	}

	s.audit("register.success", "user_id", created.ID)
	return RegisterResponse{
		Message: "User registered successfully.",
		UserID:  newUserView(created).ID,
	}, nil
}

// Refresh rotates the refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Refresh")
	defer span.End()

	if strings.TrimSpace(refreshToken) == "" {
		return AuthResponse{}, invalidToken("Refresh token missing.")
	}

	stored, err := s.refresh.GetByToken(ctx, refreshToken)
	if err != nil || stored.Revoked || stored.Expired(time.Now()) {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
		}
		return AuthResponse{}, invalidToken("Invalid refresh token.")
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		span.RecordError(err)
		return AuthResponse{}, fmt.Errorf("refresh load user: %w", err)
	}

	next := randomToken(s.cfg.RefreshTokenBytes)
	expires := time.Now().Add(s.cfg.RefreshTokenTTL)
	if err := s.refresh.Rotate(ctx, stored.ID, next, expires.Unix()); err != nil {
		span.RecordError(err)
		return AuthResponse{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	access, err := s.tokens.Sign(user)
	if err != nil {
		span.RecordError(err)
		return AuthResponse{}, fmt.Errorf("sign access token: %w", err)
	}

	s.audit("refresh.success", "user_id", user.ID)
	return AuthResponse{User: newUserView(user), Token: access, RefreshToken: next}, nil
}

// ForgotPassword mints a reset token for the account. The reply is the same
// whether or not the account exists so the endpoint cannot be used to probe
// for registered emails.
func (s *AuthService) ForgotPassword(ctx context.Context, data validate.PasswordResetData) (MessageResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.ForgotPassword")
	defer span.End()

	neutral := MessageResponse{Message: "If the account exists, password reset instructions have been sent."}

	if res := validate.PasswordReset(data); !res.Valid() {
		return MessageResponse{}, validationError(res)
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(data.Email))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
		}
		return neutral, nil
	}

	resetToken := uuid.NewString()
	if err := s.resets.Save(ctx, resetToken, user.ID); err != nil {
		span.RecordError(err)
		return MessageResponse{}, fmt.Errorf("save reset token: %w", err)
	}

	// Delivery is out of band; the token only shows up in the audit trail
	// of the log stream, never in the HTTP response.
	s.audit("password_reset.requested", "user_id", user.ID)
	return neutral, nil
}

// UpdatePassword changes a password either with the current password (an
// authenticated caller, actorID > 0) or with a reset token. All refresh
// tokens for the user are revoked afterwards.
func (s *AuthService) UpdatePassword(ctx context.Context, actorID int64, data validate.PasswordUpdateData) (MessageResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.UpdatePassword")
	defer span.End()

	if res := validate.PasswordUpdate(data); !res.Valid() {
		return MessageResponse{}, validationError(res)
	}

	var user domain.User
	switch {
	case data.Token != "":
		userID, found, err := s.resets.Consume(ctx, data.Token)
		if err != nil {
			span.RecordError(err)
			return MessageResponse{}, fmt.Errorf("consume reset token: %w", err)
		}
		if !found {
			return MessageResponse{}, invalidToken("Reset token is invalid or expired.")
		}
		user, err = s.users.GetByID(ctx, userID)
		if err != nil {
			span.RecordError(err)
			return MessageResponse{}, fmt.Errorf("reset load user: %w", err)
		}
	case actorID > 0:
		var err error
		user, err = s.users.GetByID(ctx, actorID)
		if err != nil {
			span.RecordError(err)
			return MessageResponse{}, fmt.Errorf("load user: %w", err)
		}
		ok, err := pw.Verify(data.CurrentPassword, user.PasswordHash)
		if err != nil || !ok {
			return MessageResponse{}, invalidCredentials()
		}
	default:
		return MessageResponse{}, invalidToken("Authentication required.")
	}

	hashed, err := pw.Hash(data.NewPassword)
	if err != nil {
		span.RecordError(err)
		return MessageResponse{}, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		span.RecordError(err)
		return MessageResponse{}, fmt.Errorf("update password: %w", err)
	}
	if err := s.refresh.RevokeAllForUser(ctx, user.ID); err != nil {
		span.RecordError(err)
		return MessageResponse{}, fmt.Errorf("revoke sessions: %w", err)
	}

	s.audit("password_update.success", "user_id", user.ID)
	return MessageResponse{Message: "Password updated successfully."}, nil
}

// GetCurrentUser loads the profile for the authenticated user.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID int64) (UserView, error) {
	ctx, span := s.startSpan(ctx, "AuthService.GetCurrentUser")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return UserView{}, invalidToken("Unknown user.")
		}
		span.RecordError(err)
		return UserView{}, fmt.Errorf("load user: %w", err)
	}
	return newUserView(user), nil
}

// UpdateProfile applies a validated profile edit with its audit record.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, data validate.ProfileData) (UserView, error) {
	ctx, span := s.startSpan(ctx, "AuthService.UpdateProfile")
	defer span.End()

	if res := validate.Profile(data); !res.Valid() {
		return UserView{}, validationError(res)
	}

	before, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return UserView{}, fmt.Errorf("load user: %w", err)
	}

	patch := domain.ProfilePatch{
		Name:  strings.TrimSpace(data.Name),
		Email: normalizeEmail(data.Email),
		Phone: strings.TrimSpace(data.Phone),
		Bio:   data.Bio,
	}

	beforeJSON := redactUser(before)
	audit := domain.AuditRecord{
		ID:         s.snowflake.Generate().Int64(),
		OccurredAt: time.Now().UTC(),
		ActorID:    &before.ID,
		View:       "/profile",
		Event:      domain.AuditEventUpdate,
		Element:    "profile-form-submit",
		Before:     &beforeJSON,
	}
	after := before
	after.Name = patch.Name
	after.Email = patch.Email
	after.Phone = patch.Phone
	after.Bio = patch.Bio
	audit.After = redactUser(after)

	updated, err := s.users.UpdateProfile(ctx, userID, patch, audit)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return UserView{}, emailConflict()
		}
		span.RecordError(err)
		return UserView{}, fmt.Errorf("update profile: %w", err)
	}

	s.audit("profile_update.success", "user_id", updated.ID)
	return newUserView(updated), nil
}

func (s *AuthService) issueCredentials(ctx context.Context, user domain.User) (AuthResponse, error) {
	access, err := s.tokens.Sign(user)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := domain.RefreshToken{
		ID:        s.snowflake.Generate().Int64(),
		UserID:    user.ID,
		Token:     randomToken(s.cfg.RefreshTokenBytes),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := s.refresh.Create(ctx, refresh); err != nil {
		return AuthResponse{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return AuthResponse{User: newUserView(user), Token: access, RefreshToken: refresh.Token}, nil
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	logger := s.log()
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

func validationError(res validate.Result) *AuthError {
	field := ""
	if len(res.Errors) > 0 {
		field = res.Errors[0].Field
	}
	return invalidRequest(res.Message(), field)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken(n int) string {
	if n <= 0 {
		n = 32
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func redactUser(user domain.User) string {
	payload := map[string]any{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
		"bio":   user.Bio,
	}
	payload["password"] = redactedPassword
	out, err := json.Marshal(payload)
	if err != nil {
		return `{"password":"` + redactedPassword + `"}`
	}
	return string(out)
}
