package dto

import "time"

// Authentication request DTOs

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum" example:"johndoe"`
	Password string `json:"password" validate:"required,strong_password" example:"SecurePass123!"`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required,email_or_username" example:"user@example.com"`
	Password        string `json:"password" validate:"required" example:"SecurePass123!"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

func (r RefreshTokenRequest) Validate() error {
	return GetValidator().Struct(r)
}

// Authentication response DTOs

type TokenPair struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresIn    int64  `json:"expires_in" example:"86400"`
}

type UserInfo struct {
	ID          string     `json:"id" example:"0198c5b6-1f2a-7c3d-9e4f-5a6b7c8d9e0f"`
	Username    string     `json:"username" example:"johndoe"`
	Email       string     `json:"email" example:"user@example.com"`
	Role        string     `json:"role" example:"student"`
	CreatedAt   time.Time  `json:"created_at" example:"2025-01-01T00:00:00Z"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" example:"2025-01-15T10:30:00Z"`
}

type LoginResponse struct {
	TokenPair
	User UserInfo `json:"user"`
}
