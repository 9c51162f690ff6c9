// Package restgw implements session.Gateway against the REST auth gateway.
package restgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lindero/lindero-auth/internal/session"
	"github.com/lindero/lindero-auth/internal/validate"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client talks to the auth gateway over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a gateway client for baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type envelopeResponse struct {
	User         session.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, data validate.LoginData) (session.Envelope, error) {
	var resp envelopeResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", data, &resp); err != nil {
		return session.Envelope{}, err
	}
	return session.Envelope{Token: resp.Token, RefreshToken: resp.RefreshToken, User: resp.User}, nil
}

func (c *Client) Register(ctx context.Context, data validate.RegisterData) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", data, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (session.Envelope, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var resp envelopeResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", body, &resp); err != nil {
		return session.Envelope{}, err
	}
	return session.Envelope{Token: resp.Token, RefreshToken: resp.RefreshToken, User: resp.User}, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, data validate.PasswordResetData) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/password-reset", "", data, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) UpdatePassword(ctx context.Context, accessToken string, data validate.PasswordUpdateData) (string, error) {
	path := "/auth/password-update"
	if data.Token != "" {
		path = "/auth/password-reset/confirm"
		accessToken = ""
	}
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, path, accessToken, data, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) CurrentUser(ctx context.Context, accessToken string) (session.User, error) {
	var user session.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", accessToken, nil, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, accessToken string, data validate.ProfileData) (session.User, error) {
	var user session.User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", accessToken, data, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError turns a non-2xx response into a GatewayError. An absent or
// unparsable body leaves Message empty and the caller degrades to a generic
// message.
func decodeError(status int, raw []byte) error {
	gwErr := &session.GatewayError{Status: status}
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Field   string `json:"field"`
	}
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		gwErr.Message = body.Message
		gwErr.Code = body.Code
		gwErr.Field = body.Field
	}
	return gwErr
}
