package dto

// Error envelope DTOs
type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Invalid request"`
	Error   string `json:"error,omitempty" example:"validation failed"`
}

type ValidationError struct {
	Field   string `json:"field" example:"email"`
	Message string `json:"message" example:"invalid email format"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code" example:"400"`
	Message string            `json:"message" example:"Validation failed"`
	Errors  []ValidationError `json:"errors"`
}

// Pagination DTOs
type PaginationRequest struct {
	Page  int `json:"page" form:"page" validate:"omitempty,min=1" example:"1"`
	Limit int `json:"limit" form:"limit" validate:"omitempty,min=1,max=100" example:"20"`
}

func (p PaginationRequest) Validate() error {
	return GetValidator().Struct(p)
}

// Normalize applies the default page and page size for unset fields.
func (p *PaginationRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
}

type PaginationResponse struct {
	Page       int   `json:"page" example:"1"`
	Limit      int   `json:"limit" example:"20"`
	Total      int64 `json:"total" example:"100"`
	TotalPages int   `json:"total_pages" example:"5"`
}

func NewPaginationResponse(page, limit int, total int64) PaginationResponse {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
