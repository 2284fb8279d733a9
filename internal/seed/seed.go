package seed

import (
	"fmt"
	"log/slog"

	"quill/internal/middleware"
	"quill/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Authors         int
	Readers         int
	PostsPerAuthor  int
	CommentsPerPost int
	// DraftRatio is the share of posts left as drafts, between 0 and 1.
	DraftRatio float64
	Clean      bool
	// CategoriesFile is a YAML fixture; empty uses the built-in list.
	CategoriesFile string
	BcryptCost     int
	MaxDays        int
	RandomSeed     int64
}

// DefaultOptions is a small but varied data set.
func DefaultOptions() Options {
	return Options{
		Authors:         4,
		Readers:         10,
		PostsPerAuthor:  6,
		CommentsPerPost: 3,
		DraftRatio:      0.25,
		Clean:           true,
	}
}

// Summary counts what a run created.
type Summary struct {
	Categories int
	Authors    int
	Readers    int
	Published  int
	Drafts     int
	Comments   int
}

// Seed fills db with demo data according to opts.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if opts.DraftRatio < 0 || opts.DraftRatio > 1 {
		return nil, fmt.Errorf("draft ratio %v outside [0, 1]", opts.DraftRatio)
	}
	names, err := LoadCategories(opts.CategoriesFile)
	if err != nil {
		return nil, err
	}
	factory, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}

	var summary Summary
	err = db.Transaction(func(tx *gorm.DB) error {
		factory.db = tx
		if opts.Clean {
			if err := clearData(tx); err != nil {
				return fmt.Errorf("clear data: %w", err)
			}
		}

		categories, err := Categories(tx, names)
		if err != nil {
			return err
		}
		summary.Categories = len(categories)

		authors, err := createUsers(factory, opts.Authors, true)
		if err != nil {
			return err
		}
		readers, err := createUsers(factory, opts.Readers, false)
		if err != nil {
			return err
		}
		summary.Authors, summary.Readers = len(authors), len(readers)
		commenters := append(append([]*models.User{}, readers...), authors...)

		perAuthorDrafts := int(float64(opts.PostsPerAuthor) * opts.DraftRatio)
		for _, author := range authors {
			for i := 0; i < opts.PostsPerAuthor; i++ {
				status := models.StatusPublished
				if i < perAuthorDrafts {
					status = models.StatusDraft
				}
				var category *models.Category
				if len(categories) > 0 {
					category = &categories[factory.rng.Intn(len(categories))]
				}
				post, err := factory.CreatePost(author, category, status)
				if err != nil {
					return fmt.Errorf("create post: %w", err)
				}
				if status == models.StatusDraft {
					summary.Drafts++
					continue
				}
				summary.Published++

				for j := 0; j < opts.CommentsPerPost && len(commenters) > 0; j++ {
					user := commenters[factory.rng.Intn(len(commenters))]
					if _, err := factory.CreateComment(user, post); err != nil {
						return fmt.Errorf("create comment: %w", err)
					}
					summary.Comments++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.Info("Seed complete",
		slog.Int("categories", summary.Categories),
		slog.Int("authors", summary.Authors),
		slog.Int("readers", summary.Readers),
		slog.Int("published", summary.Published),
		slog.Int("drafts", summary.Drafts),
		slog.Int("comments", summary.Comments),
	)
	return &summary, nil
}

func createUsers(f *Factory, n int, isAuthor bool) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := f.CreateUser(isAuthor)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// clearData removes every blog row, children first.
func clearData(db *gorm.DB) error {
	for _, model := range []any{
		&models.BlacklistedToken{},
		&models.Comment{},
		&models.Post{},
		&models.Category{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
