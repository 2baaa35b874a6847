package dto

import "time"

// Admin user management DTOs

type AdminUserInfo struct {
	ID          string     `json:"id" example:"0198c5b6-1f2a-7c3d-9e4f-5a6b7c8d9e0f"`
	Username    string     `json:"username" example:"johndoe"`
	Email       string     `json:"email" example:"user@example.com"`
	Role        string     `json:"role" example:"student"`
	CreatedAt   time.Time  `json:"created_at" example:"2025-01-01T00:00:00Z"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" example:"2025-01-15T10:30:00Z"`
}

type AdminUserListResponse struct {
	Users      []AdminUserInfo    `json:"users"`
	Pagination PaginationResponse `json:"pagination"`
}

type AdminUpdateUserRequest struct {
	Role *string `json:"role,omitempty" validate:"omitempty,oneof=student admin" example:"admin"`
}

func (a AdminUpdateUserRequest) Validate() error {
	return GetValidator().Struct(a)
}
