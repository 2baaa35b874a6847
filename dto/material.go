package dto

import "time"

// Material request DTOs

// UploadMaterialRequest carries the multipart form fields accompanying the
// uploaded file.
type UploadMaterialRequest struct {
	Title       string `json:"title" form:"title" validate:"required,min=3,max=200" example:"Calculus II Midterm 2024"`
	Description string `json:"description" form:"description" validate:"omitempty,max=2000" example:"Covers integration techniques and series"`
	SubjectCode string `json:"subject_code" form:"subject_code" validate:"required,min=2,max=20" example:"MATH201"`
	Kind        string `json:"kind" form:"kind" validate:"required,oneof=note past_paper" example:"past_paper"`
	Year        int    `json:"year" form:"year" validate:"omitempty,min=1990,max=2100" example:"2024"`
}

func (u UploadMaterialRequest) Validate() error {
	return GetValidator().Struct(u)
}

// ListMaterialsRequest is assembled by the handler from query parameters.
type ListMaterialsRequest struct {
	PaginationRequest
	SubjectCode string `json:"subject_code"`
	Kind        string `json:"kind"`
	Year        int    `json:"year"`
	UploaderID  string `json:"uploader_id"`
	Search      string `json:"search"`
}

// IsUnfiltered reports whether the request selects the default listing,
// which is the only page served from cache.
func (l ListMaterialsRequest) IsUnfiltered() bool {
	return l.SubjectCode == "" && l.Kind == "" && l.Year == 0 &&
		l.UploaderID == "" && l.Search == "" && l.Page == 1 && l.Limit == 20
}

// Material response DTOs

type MaterialResponse struct {
	ID               string    `json:"id" example:"0198c5b6-1f2a-7c3d-9e4f-5a6b7c8d9e0f"`
	Title            string    `json:"title" example:"Calculus II Midterm 2024"`
	Description      string    `json:"description,omitempty" example:"Covers integration techniques and series"`
	SubjectCode      string    `json:"subject_code" example:"MATH201"`
	Kind             string    `json:"kind" example:"past_paper"`
	Year             int       `json:"year,omitempty" example:"2024"`
	UploaderID       string    `json:"uploader_id" example:"0198c5b6-0000-7c3d-9e4f-5a6b7c8d9e0f"`
	UploaderUsername string    `json:"uploader_username,omitempty" example:"johndoe"`
	OriginalFilename string    `json:"original_filename" example:"midterm_2024.pdf"`
	SizeBytes        int64     `json:"size_bytes" example:"1048576"`
	MimeType         string    `json:"mime_type" example:"application/pdf"`
	Downloads        int64     `json:"downloads" example:"42"`
	CreatedAt        time.Time `json:"created_at" example:"2025-01-01T00:00:00Z"`
}

type MaterialListResponse struct {
	Materials  []MaterialResponse `json:"materials"`
	Pagination PaginationResponse `json:"pagination"`
}

// DownloadResponse carries a presigned, time-limited object URL.
type DownloadResponse struct {
	URL       string `json:"url" example:"https://storage.example.com/studypool-materials/..."`
	Filename  string `json:"filename" example:"midterm_2024.pdf"`
	ExpiresIn int64  `json:"expires_in" example:"900"`
}

// FileValidationErrorResponse is the upload rejection body. The field names
// are part of the public API contract.
type FileValidationErrorResponse struct {
	Error   string `json:"error" example:"File validation failed"`
	Details string `json:"details" example:"File size 25.00 MB exceeds maximum allowed size 20.00 MB"`
}
