package domain

import "time"

// User is the canonical identity record owned by the relational store.
// Emails are stored lowercased; uniqueness is enforced by the database.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Bio          string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfilePatch carries the mutable profile fields for an update.
type ProfilePatch struct {
	Name  string
	Email string
	Phone string
	Bio   string
}
