// Package seed creates demo data for development databases.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Factory builds blog entities with fake content and persists them.
type Factory struct {
	db     *gorm.DB
	faker  *gofakeit.Faker
	rng    *rand.Rand
	hash   string
	maxAge time.Duration
	titles map[string]bool
	users  map[string]bool
}

// NewFactory returns a Factory writing to db. A zero seed is random.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		db:     db,
		faker:  gofakeit.New(seed),
		rng:    rand.New(rand.NewSource(seed)),
		hash:   string(hash),
		maxAge: time.Duration(maxDays) * 24 * time.Hour,
		titles: make(map[string]bool),
		users:  make(map[string]bool),
	}, nil
}

func (f *Factory) pastTime() time.Time {
	return time.Now().Add(-time.Duration(f.rng.Int63n(int64(f.maxAge))))
}

// uniqueTitle returns a fresh sentence-style title no earlier post used.
func (f *Factory) uniqueTitle() string {
	for {
		title := strings.TrimSuffix(f.faker.Sentence(f.rng.Intn(5)+3), ".")
		if len(title) > models.MaxTitleLength {
			title = title[:models.MaxTitleLength]
		}
		key := strings.ToLower(title)
		if !f.titles[key] {
			f.titles[key] = true
			return title
		}
	}
}

// BuildUser returns an unsaved user with fake names.
func (f *Factory) BuildUser(isAuthor bool) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s", first, last))
	for f.users[username] {
		username = strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, f.faker.Number(10, 9999)))
	}
	f.users[username] = true
	return &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  f.hash,
		FirstName: first,
		LastName:  last,
		IsAuthor:  isAuthor,
	}
}

// CreateUser persists a fake user. Overrides run before saving.
func (f *Factory) CreateUser(isAuthor bool, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(isAuthor)
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by author with fake content, created at
// a random time within the factory's age window.
func (f *Factory) BuildPost(author *models.User, category *models.Category, status models.PostStatus) *models.Post {
	paragraphs := f.rng.Intn(4) + 2
	post := &models.Post{
		Title:    f.uniqueTitle(),
		Content:  f.faker.Paragraph(paragraphs, 4, 12, "\n\n"),
		Status:   status,
		AuthorID: author.ID,
		Image:    fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", f.faker.UUID()),
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	post.CreatedAt = f.pastTime()
	post.UpdatedAt = post.CreatedAt
	return post
}

// CreatePost persists a fake post. Overrides run before saving.
func (f *Factory) CreatePost(author *models.User, category *models.Category, status models.PostStatus, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, category, status)
	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Omit("Author", "Category").Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a fake comment by user on post, dated after the post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	created := post.CreatedAt
	if since := time.Since(created); since > 0 {
		created = created.Add(time.Duration(f.rng.Int63n(int64(since))))
	}
	comment := &models.Comment{
		Content:   f.faker.Sentence(f.rng.Intn(15) + 5),
		AuthorID:  user.ID,
		PostID:    post.ID,
		CreatedAt: created,
	}
	if err := f.db.Omit("Author", "Post").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
