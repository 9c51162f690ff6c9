// Package session holds the client-side authentication state machine. A
// Client mediates between caller actions and the remote gateway, keeps the
// current session state, and persists the credential envelope through an
// injected store.
package session

import "fmt"

// User is the read-only profile snapshot held by the session. IDs are the
// decimal strings the gateway serializes; the client never interprets them.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

// Envelope is the credential set issued by the gateway on successful
// authentication. Token, RefreshToken, and User are persisted as one unit.
type Envelope struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}

// GatewayError is a structured failure returned by a Gateway implementation.
// Message may be empty when the remote response body was absent or
// unparsable; the client then falls back to a generic message.
type GatewayError struct {
	Status  int
	Code    string
	Message string
	Field   string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("gateway error (status %d)", e.Status)
}
