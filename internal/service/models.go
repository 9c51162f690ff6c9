package service

import (
	"strconv"
	"time"

	"github.com/lindero/lindero-auth/internal/domain"
)

// UserView is the profile snapshot returned to clients. IDs travel as
// decimal strings so front ends never lose precision on int64 values.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResponse is the credential envelope issued on login and refresh.
type AuthResponse struct {
	User         UserView `json:"user"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken,omitempty"`
}

// RegisterResponse acknowledges a registration. No session is issued; the
// client logs in afterwards.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// MessageResponse is the generic acknowledgement payload.
type MessageResponse struct {
	Message string `json:"message"`
}

func newUserView(user domain.User) UserView {
	return UserView{
		ID:        strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Bio:       user.Bio,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
