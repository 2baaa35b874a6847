package model

import "time"

// Subject is a reference taxonomy entry materials are filed under.
type Subject struct {
	ID      string `json:"id" gorm:"primaryKey"`
	Code    string `json:"code" gorm:"unique;not null"`
	Name    string `json:"name" gorm:"not null"`
	Faculty string `json:"faculty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
