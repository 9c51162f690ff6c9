// Package validate contains the pure field-validation rules applied to
// credential and profile forms before any request leaves the client. The
// functions never perform I/O and never mutate shared state, so they are safe
// to call concurrently.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Password and profile field limits, counted in characters, not bytes.
const (
	PasswordMinLen = 6
	PasswordMaxLen = 128
	NameMinLen     = 2
	NameMaxLen     = 100
	BioMaxLen      = 500
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[1-9]\d{0,3}\s?\(?\d{1,3}\)?[-\s.]?\d{3,4}[-\s.]?\d{4,6}$`)
)

// FieldError pins a validation message to the offending form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result is the outcome of validating one form. Errors keeps the order in
// which the fields were checked.
type Result struct {
	Errors []FieldError
}

// Valid reports whether the form passed every rule.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Message joins all field messages into the single string surfaced on the
// session state.
func (r Result) Message() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, ", ")
}

func (r *Result) add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// LoginData is the login form payload.
type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData is the registration form payload.
type RegisterData struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name"`
}

// PasswordResetData requests reset instructions for an account.
type PasswordResetData struct {
	Email string `json:"email"`
}

// PasswordUpdateData changes a password, either with the current password or
// with a reset token issued out of band.
type PasswordUpdateData struct {
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
	Token           string `json:"token,omitempty"`
}

// ProfileData carries the editable profile fields.
type ProfileData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
}

// Email checks presence and local@domain.tld shape.
func Email(email string) *FieldError {
	if email == "" {
		return &FieldError{Field: "email", Message: "Email is required"}
	}
	if !emailRe.MatchString(email) {
		return &FieldError{Field: "email", Message: "Email is not valid"}
	}
	return nil
}

// Password checks presence and the [6,128] length bounds. fieldName lets
// callers report the error against newPassword on update forms.
func Password(password, fieldName string) *FieldError {
	if fieldName == "" {
		fieldName = "password"
	}
	if password == "" {
		return &FieldError{Field: fieldName, Message: "Password is required"}
	}
	if utf8.RuneCountInString(password) < PasswordMinLen {
		return &FieldError{Field: fieldName, Message: fmt.Sprintf("Password must be at least %d characters", PasswordMinLen)}
	}
	if utf8.RuneCountInString(password) > PasswordMaxLen {
		return &FieldError{Field: fieldName, Message: fmt.Sprintf("Password cannot exceed %d characters", PasswordMaxLen)}
	}
	return nil
}

// Name checks presence and the [2,100] length bounds.
func Name(name string) *FieldError {
	if name == "" {
		return &FieldError{Field: "name", Message: "Name is required"}
	}
	if utf8.RuneCountInString(name) < NameMinLen {
		return &FieldError{Field: "name", Message: fmt.Sprintf("Name must be at least %d characters", NameMinLen)}
	}
	if utf8.RuneCountInString(name) > NameMaxLen {
		return &FieldError{Field: "name", Message: fmt.Sprintf("Name cannot exceed %d characters", NameMaxLen)}
	}
	return nil
}

// Phone is optional; when present it must look like an international number.
func Phone(phone string) *FieldError {
	if phone != "" && !phoneRe.MatchString(phone) {
		return &FieldError{Field: "phone", Message: "Phone number is not valid"}
	}
	return nil
}

// Login validates the login form.
func Login(data LoginData) Result {
	var r Result
	if e := Email(data.Email); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	if e := Password(data.Password, ""); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	return r
}

// Register validates the registration form, including the confirmation match.
func Register(data RegisterData) Result {
	var r Result
	if e := Name(data.Name); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	if e := Email(data.Email); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	if e := Password(data.Password, ""); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	if data.Password != data.ConfirmPassword {
		r.add("confirmPassword", "Passwords do not match")
	}
	return r
}

// PasswordReset validates a reset request.
func PasswordReset(data PasswordResetData) Result {
	var r Result
	if e := Email(data.Email); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	return r
}

// PasswordUpdate validates a password change. Without a reset token the
// current password is mandatory, and the new password must differ from it.
func PasswordUpdate(data PasswordUpdateData) Result {
	var r Result
	if data.Token == "" && data.CurrentPassword == "" {
		r.add("currentPassword", "Current password is required")
	}
	if e := Password(data.NewPassword, "newPassword"); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	if data.NewPassword != data.ConfirmPassword {
		r.add("confirmPassword", "Passwords do not match")
	}
	if data.CurrentPassword != "" && data.CurrentPassword == data.NewPassword {
		r.add("newPassword", "New password must differ from the current one")
	}
	return r
}

// Profile validates a profile edit.
func Profile(data ProfileData) Result {
	var r Result
	if e := Name(data.Name); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	if e := Email(data.Email); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	if e := Phone(data.Phone); e != nil {
		r.Errors = append(r.Errors, *e)
	}
	if utf8.RuneCountInString(data.Bio) > BioMaxLen {
		r.add("bio", fmt.Sprintf("Bio cannot exceed %d characters", BioMaxLen))
	}
	return r
}
