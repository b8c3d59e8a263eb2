package repository

import (
	"context"
	"strings"
	"time"

	"sensive/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentRepository struct {
	base
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB, opts ...Option) CommentRepository {
	return &commentRepository{base: newBase(db, opts...)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, done := r.observe(ctx, "Comment.Create", "comments")
	defer func() { done(err) }()

	if strings.TrimSpace(comment.Text) == "" {
		return models.NewValidationError("comment text is required")
	}
	if comment.PublishedAt.IsZero() {
		comment.PublishedAt = time.Now().UTC()
	}
	if err = r.writer(ctx).Omit("Author").Create(comment).Error; err != nil {
		return translateError(err, "Comment", comment.PostID)
	}
	r.invalidatePopular(ctx)
	return nil
}

// ListByPost returns a post's comments oldest first, with authors.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) (comments []models.Comment, err error) {
	ctx, done := r.observe(ctx, "Comment.ListByPost", "comments")
	defer func() { done(err) }()

	comments = []models.Comment{}
	err = r.reader(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("published_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translateError(err, "Comment", postID)
	}
	return comments, nil
}
