package repository

import (
	"strings"

	"quill/internal/models"

	"gorm.io/gorm"
)

// PostFilter holds the exact-match filters accepted on post listings.
type PostFilter struct {
	Status         string
	CategorySlug   string
	AuthorUsername string
}

// PostQuery describes one page of a post listing.
type PostQuery struct {
	Requester models.Requester
	// OwnerID restricts the listing to one author's posts of every status
	// and bypasses the visibility scope.
	OwnerID       uint
	PublishedOnly bool
	Filter        PostFilter
	Search        string
	Ordering      string
	Limit         int
	Offset        int
}

// VisibleTo limits posts to those the requester may address: published posts
// for everyone, plus an author's own posts of any status.
func VisibleTo(r models.Requester) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.IsAnonymous() || !r.IsAuthor {
			return db.Where("posts.status = ?", models.StatusPublished)
		}
		return db.Where("(posts.author_id = ? OR posts.status = ?)", r.UserID, models.StatusPublished)
	}
}

// Published keeps only published posts.
func Published(db *gorm.DB) *gorm.DB {
	return db.Where("posts.status = ?", models.StatusPublished)
}

// OwnedBy keeps only posts by the given author.
func OwnedBy(authorID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}
}

// Filtered applies the exact-match filters that are set.
func Filtered(f PostFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("posts.status = ?", f.Status)
		}
		if f.CategorySlug != "" {
			db = db.Where("posts.category_id IN (SELECT id FROM categories WHERE categories.slug = ?)", f.CategorySlug)
		}
		if f.AuthorUsername != "" {
			db = db.Where("posts.author_id IN (SELECT id FROM users WHERE users.username = ?)", f.AuthorUsername)
		}
		return db
	}
}

// SearchTerms splits a search string on whitespace and commas.
func SearchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Searched requires every term to appear, case-insensitively, in the title,
// content or excerpt.
func Searched(search string) func(*gorm.DB) *gorm.DB {
	terms := SearchTerms(search)
	return func(db *gorm.DB) *gorm.DB {
		for _, term := range terms {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
			db = db.Where(
				`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\' OR LOWER(posts.excerpt) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern,
			)
		}
		return db
	}
}

var orderableColumns = map[string]string{
	"created_at": "posts.created_at",
	"updated_at": "posts.updated_at",
	"title":      "posts.title",
}

// OrderClauses turns "a,-b" into ORDER BY terms, dropping unknown fields.
// The default is newest first.
func OrderClauses(ordering string) []string {
	var clauses []string
	for _, field := range strings.Split(ordering, ",") {
		field = strings.TrimSpace(field)
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		if col, ok := orderableColumns[field]; ok {
			clauses = append(clauses, col+" "+dir)
		}
	}
	if len(clauses) == 0 {
		clauses = []string{"posts.created_at DESC"}
	}
	return append(clauses, "posts.id DESC")
}

// Ordered applies OrderClauses.
func Ordered(ordering string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, clause := range OrderClauses(ordering) {
			db = db.Order(clause)
		}
		return db
	}
}

// withCommentsCount selects posts with their live comment count.
func withCommentsCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count")
}

func withPostRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Category")
}
