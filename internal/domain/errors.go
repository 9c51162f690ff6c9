package domain

import "errors"

// Sentinel errors shared between the service layer and repositories.
var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken signals a duplicate-email registration attempt.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers bad email/password pairs and bad reset
	// tokens alike so callers cannot probe which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
