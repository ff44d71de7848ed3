package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/chirpy/internal/domain"
)

// UserRequest is the payload for creating or updating a user.
type UserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	ExpiresInSeconds *int   `json:"expiresInSeconds,omitempty"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Email     string    `json:"email"`
}

// LoginResponse is the user plus a bearer token.
type LoginResponse struct {
	UserResponse
	Token string `json:"token"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Email:     u.Email,
	}
}
