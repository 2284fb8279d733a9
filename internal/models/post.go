package models

import (
	"time"

	"quill/internal/textutil"

	"gorm.io/gorm"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

const (
	MaxTitleLength   = 200
	MaxExcerptLength = 500
	MaxImageLength   = 500
)

// Post is an article written by an author. The slug is fixed once created.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:200;not null" json:"title"`
	Slug       string     `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Excerpt    string     `gorm:"size:500" json:"excerpt"`
	Status     PostStatus `gorm:"size:10;not null;index" json:"status"`
	AuthorID   uint       `gorm:"not null;index" json:"-"`
	Author     User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	CategoryID *uint      `gorm:"index" json:"-"`
	Category   *Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category"`
	Image      string     `gorm:"size:500" json:"image"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int64     `gorm:"->;-:migration" json:"comments_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// BeforeCreate fixes the slug and default status of a new post.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = textutil.SlugifyMax(p.Title, MaxTitleLength)
	}
	if p.Slug == "" {
		return NewFieldError("title", "Title must contain at least one letter or digit.")
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return nil
}

// BeforeSave derives the excerpt when it is blank.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if p.Excerpt == "" {
		p.Excerpt = textutil.Excerpt(p.Content)
	}
	return nil
}
