package service

import (
	"fmt"
	"net/http"
)

// AuthError is the structured failure surfaced over the REST boundary. Every
// error carries a human-readable message; Code and Field are optional
// machine hints.
type AuthError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func invalidRequest(message, field string) *AuthError {
	return &AuthError{Status: http.StatusBadRequest, Code: "invalid_request", Message: message, Field: field}
}

func invalidCredentials() *AuthError {
	return &AuthError{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "Wrong email or password."}
}

func invalidToken(message string) *AuthError {
	return &AuthError{Status: http.StatusUnauthorized, Code: "invalid_token", Message: message}
}

func emailConflict() *AuthError {
	return &AuthError{Status: http.StatusConflict, Code: "email_taken", Message: "Email already registered.", Field: "email"}
}
