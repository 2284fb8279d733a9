package models

import (
	"time"

	"quill/internal/textutil"

	"gorm.io/gorm"
)

// Category groups posts. Categories are read-only over the API.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	// PostsCount is not persisted; computed at query time
	PostsCount int64 `gorm:"->;-:migration" json:"-"`
}

// BeforeCreate derives the slug from the name when none was given.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = textutil.SlugifyMax(c.Name, 100)
	}
	if c.Slug == "" {
		return NewFieldError("name", "Name must contain at least one letter or digit.")
	}
	return nil
}
