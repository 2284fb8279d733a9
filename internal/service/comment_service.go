package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// CommentInput is the writable part of a comment.
type CommentInput struct {
	Content *string `json:"content"`
}

// CommentPage is one page of comments and the total count.
type CommentPage struct {
	Comments []models.CommentView
	Total    int64
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// ListComments pages through comments of the post with postSlug, or all
// comments when postSlug is empty.
func (s *CommentService) ListComments(ctx context.Context, postSlug string, limit, offset int) (*CommentPage, error) {
	comments, total, err := s.commentRepo.List(ctx, postSlug, limit, offset)
	if err != nil {
		return nil, err
	}
	return &CommentPage{Comments: models.MapSlice(comments, models.NewCommentView), Total: total}, nil
}

func (s *CommentService) GetComment(ctx context.Context, postSlug string, id uint) (*models.CommentView, error) {
	comment, err := s.commentRepo.GetByID(ctx, postSlug, id)
	if err != nil {
		return nil, err
	}
	view := models.NewCommentView(comment)
	return &view, nil
}

// CreateComment adds a comment by the requester to a published post.
func (s *CommentService) CreateComment(ctx context.Context, r models.Requester, postSlug string, in CommentInput) (*models.CommentView, error) {
	if err := RequireAuthenticated(r); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetPublishedBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}

	var errs fieldErrors
	errs.requireText("content", in.Content, 0)
	if err := errs.result(); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: *in.Content, AuthorID: r.UserID, PostID: post.ID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordWrite("comment", "create")
	view := models.NewCommentView(comment)
	return &view, nil
}

// UpdateComment edits the requester's own comment. partial selects PATCH semantics.
func (s *CommentService) UpdateComment(ctx context.Context, r models.Requester, postSlug string, id uint, in CommentInput, partial bool) (*models.CommentView, error) {
	comment, err := s.writableComment(ctx, r, postSlug, id)
	if err != nil {
		return nil, err
	}

	if !partial || in.Content != nil {
		var errs fieldErrors
		errs.requireText("content", in.Content, 0)
		if err := errs.result(); err != nil {
			return nil, err
		}
		comment.Content = *in.Content
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordWrite("comment", "update")
	view := models.NewCommentView(comment)
	return &view, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, r models.Requester, postSlug string, id uint) error {
	comment, err := s.writableComment(ctx, r, postSlug, id)
	if err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return err
	}
	observability.RecordWrite("comment", "delete")
	return nil
}

func (s *CommentService) writableComment(ctx context.Context, r models.Requester, postSlug string, id uint) (*models.Comment, error) {
	if err := RequireAuthenticated(r); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, postSlug, id)
	if err != nil {
		return nil, err
	}
	if err := OwnerGate(r, comment.AuthorID); err != nil {
		return nil, err
	}
	return comment, nil
}
