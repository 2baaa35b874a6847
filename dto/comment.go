package dto

import "time"

// Comment request DTOs

type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=2000" example:"Question 3 has a typo in the solution"`
	ParentID string `json:"parent_id,omitempty" validate:"omitempty,uuid" example:"0198c5b6-1f2a-7c3d-9e4f-5a6b7c8d9e0f"`
}

func (c CreateCommentRequest) Validate() error {
	return GetValidator().Struct(c)
}

// Comment response DTOs

type CommentResponse struct {
	ID             string            `json:"id" example:"0198c5b6-1f2a-7c3d-9e4f-5a6b7c8d9e0f"`
	MaterialID     string            `json:"material_id" example:"0198c5b6-0000-7c3d-9e4f-5a6b7c8d9e0f"`
	ParentID       string            `json:"parent_id,omitempty" example:"0198c5b6-2222-7c3d-9e4f-5a6b7c8d9e0f"`
	AuthorID       string            `json:"author_id" example:"0198c5b6-1111-7c3d-9e4f-5a6b7c8d9e0f"`
	AuthorUsername string            `json:"author_username,omitempty" example:"johndoe"`
	Content        string            `json:"content" example:"Question 3 has a typo in the solution"`
	CreatedAt      time.Time         `json:"created_at" example:"2025-01-01T00:00:00Z"`
	Children       []CommentResponse `json:"children,omitempty"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int               `json:"total" example:"7"`
}
