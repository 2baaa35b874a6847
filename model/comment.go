package model

import "time"

// Comment is a single node in a material's discussion thread. A nil ParentID
// marks a top-level comment.
type Comment struct {
	ID         string  `json:"id" gorm:"primaryKey"`
	MaterialID string  `json:"material_id" gorm:"index;not null"`
	ParentID   *string `json:"parent_id" gorm:"index"`
	AuthorID   string  `json:"author_id" gorm:"index;not null"`
	Content    string  `json:"content" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Material Material `json:"-" gorm:"foreignKey:MaterialID"`
	Author   User     `json:"-" gorm:"foreignKey:AuthorID"`
}
