// Package models contains the persistent entities of the blog and the
// request-scoped types that travel with them.
package models

import (
	"strings"
	"time"

	"quill/internal/textutil"
)

// User is an account. Authors may publish posts; every user may comment.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254" json:"email"`
	Password  string    `gorm:"size:128;not null" json:"-"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	IsAuthor  bool      `gorm:"not null" json:"is_author"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
	// PostsCount is not persisted; computed at query time
	PostsCount int64 `gorm:"->;-:migration" json:"-"`
}

// DisplayName is "First Last" when both names are set, the first name when
// only it is, and otherwise the username with underscores as spaces in title case.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return textutil.Title(strings.ReplaceAll(u.Username, "_", " "))
	}
}
