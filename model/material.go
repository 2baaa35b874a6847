package model

import "time"

// Material is the metadata row for an uploaded study document. The file
// itself lives in object storage under StorageKey.
type Material struct {
	ID               string `json:"id" gorm:"primaryKey"`
	Title            string `json:"title" gorm:"not null"`
	Description      string `json:"description" gorm:"type:text"`
	SubjectCode      string `json:"subject_code" gorm:"index;not null"`
	Kind             string `json:"kind" gorm:"index;not null"` // note, past_paper
	Year             int    `json:"year"`
	UploaderID       string `json:"uploader_id" gorm:"index;not null"`
	OriginalFilename string `json:"original_filename" gorm:"not null"`
	StorageKey       string `json:"-" gorm:"unique;not null"`
	SizeBytes        int64  `json:"size_bytes"`
	MimeType         string `json:"mime_type"`
	Downloads        int64  `json:"downloads" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Uploader User `json:"-" gorm:"foreignKey:UploaderID"`
}
