package session

import (
	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"
)

// LoginRequest defines the structure for login requests.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest defines the structure for signup requests.
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"omitempty,max=120"`
}

// ResetPasswordRequest defines the structure for password reset requests.
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UserResponse is the identity part of a session.
type UserResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Response is the session as handed to clients. Profile is null whenever it
// could not be resolved, independently of the authentication state.
type Response struct {
	User            UserResponse          `json:"user"`
	Profile         *profile.Profile      `json:"profile"`
	Token           *shared.TokenResponse `json:"token,omitempty"`
	IsAuthenticated bool                  `json:"isAuthenticated"`
}

func toUserResponse(p shared.Principal) UserResponse {
	return UserResponse{UID: p.UID, Email: p.Email, DisplayName: p.DisplayName}
}
