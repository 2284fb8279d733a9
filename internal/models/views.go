package models

import "time"

// AuthorSummary is the author block embedded in post responses.
type AuthorSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsAuthor    bool   `json:"is_author"`
	DisplayName string `json:"display_name"`
}

// CategoryRef is a category without aggregates.
type CategoryRef struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryWithCount adds the number of published posts.
type CategoryWithCount struct {
	CategoryRef
	PostsCount int64 `json:"posts_count"`
}

// PostSummary is the list projection of a post; it omits the content.
type PostSummary struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Excerpt   string        `json:"excerpt"`
	Author    AuthorSummary `json:"author"`
	Category  *CategoryRef  `json:"category"`
	Image     string        `json:"image"`
	Status    PostStatus    `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PostDetail is the single-post projection.
type PostDetail struct {
	PostSummary
	Content       string `json:"content"`
	CommentsCount int64  `json:"comments_count"`
}

// UserPublic is a user as shown to other users.
type UserPublic struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsAuthor  bool      `json:"is_author"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfile is the requester's own account view.
type UserProfile struct {
	UserPublic
	PostsCount int64 `json:"posts_count"`
}

// CommentView is a comment with its author expanded.
type CommentView struct {
	ID        uint       `json:"id"`
	Content   string     `json:"content"`
	Author    UserPublic `json:"author"`
	Post      uint       `json:"post"`
	CreatedAt time.Time  `json:"created_at"`
}

// TokenPair carries a freshly issued access and refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessToken is the refresh endpoint response.
type AccessToken struct {
	Access string `json:"access"`
}

// Page is the page-number pagination envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func NewAuthorSummary(u *User) AuthorSummary {
	return AuthorSummary{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsAuthor:    u.IsAuthor,
		DisplayName: u.DisplayName(),
	}
}

func NewCategoryRef(c *Category) *CategoryRef {
	if c == nil {
		return nil
	}
	return &CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug, CreatedAt: c.CreatedAt}
}

func NewCategoryWithCount(c *Category) CategoryWithCount {
	return CategoryWithCount{CategoryRef: *NewCategoryRef(c), PostsCount: c.PostsCount}
}

func NewPostSummary(p *Post) PostSummary {
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Excerpt:   p.Excerpt,
		Author:    NewAuthorSummary(&p.Author),
		Category:  NewCategoryRef(p.Category),
		Image:     p.Image,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewPostDetail(p *Post) PostDetail {
	return PostDetail{
		PostSummary:   NewPostSummary(p),
		Content:       p.Content,
		CommentsCount: p.CommentsCount,
	}
}

func NewUserPublic(u *User) UserPublic {
	return UserPublic{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAuthor:  u.IsAuthor,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserProfile(u *User) UserProfile {
	return UserProfile{UserPublic: NewUserPublic(u), PostsCount: u.PostsCount}
}

func NewCommentView(c *Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		Content:   c.Content,
		Author:    NewUserPublic(&c.Author),
		Post:      c.PostID,
		CreatedAt: c.CreatedAt,
	}
}

// MapSlice projects every element of in with fn.
func MapSlice[S any, T any](in []S, fn func(*S) T) []T {
	out := make([]T, 0, len(in))
	for i := range in {
		out = append(out, fn(&in[i]))
	}
	return out
}
