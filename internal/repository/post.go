package repository

import (
	"context"
	"time"

	"sensive/internal/models"
	"sensive/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post queries and the writes used by seeding.
type PostRepository interface {
	Year(ctx context.Context, year int) ([]models.Post, error)
	Popular(ctx context.Context, limit int) ([]models.PostWithCounts, error)
	FetchWithCommentsCount(ctx context.Context, scope Scope) ([]models.PostWithCounts, error)
	Fresh(ctx context.Context, limit int) ([]models.PostWithCounts, error)
	ByTag(ctx context.Context, tagID uint, limit int) ([]models.PostWithCounts, error)
	GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error)
	AttachCommentsCount(ctx context.Context, posts []models.PostWithCounts) error
	Create(ctx context.Context, post *models.Post) error
	Like(ctx context.Context, postID, userID uint) error
	Unlike(ctx context.Context, postID, userID uint) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	base
	tags TagRepository
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, opts ...Option) PostRepository {
	b := newBase(db, opts...)
	return &postRepository{
		base: b,
		tags: &tagRepository{base: b},
	}
}

// byNewest is the default post ordering.
func byNewest(db *gorm.DB) *gorm.DB {
	return db.Order("posts.published_at DESC").Order("posts.id DESC")
}

func (r *postRepository) Year(ctx context.Context, year int) (posts []models.Post, err error) {
	ctx, done := r.observe(ctx, "Post.Year", "posts")
	defer func() { done(err) }()

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	posts = []models.Post{}
	err = r.reader(ctx).
		Preload("Author").
		Where("published_at >= ? AND published_at < ?", start, end).
		Order("published_at ASC").
		Order("id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", year)
	}
	return posts, nil
}

type likeRank struct {
	PostID     uint
	LikesCount int
}

// Popular ranks posts by distinct likers, then attaches tags and comment counts.
// Likes and comments are counted in separate queries so the two joins never multiply.
func (r *postRepository) Popular(ctx context.Context, limit int) (result []models.PostWithCounts, err error) {
	ctx, done := r.observe(ctx, "Post.Popular", "posts")
	defer func() { done(err) }()

	q := r.reader(ctx).Model(&models.Post{}).
		Select("posts.id AS post_id, COUNT(DISTINCT post_likes.user_id) AS likes_count").
		Joins("LEFT JOIN post_likes ON post_likes.post_id = posts.id").
		Group("posts.id, posts.published_at").
		Order("likes_count DESC").
		Order("posts.published_at DESC").
		Order("posts.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var ranks []likeRank
	if err = q.Scan(&ranks).Error; err != nil {
		return nil, translateError(err, "Post", "popular")
	}
	if len(ranks) == 0 {
		return []models.PostWithCounts{}, nil
	}

	ids := make([]uint, 0, len(ranks))
	for _, rank := range ranks {
		ids = append(ids, rank.PostID)
	}

	var posts []models.Post
	if err = r.reader(ctx).Preload("Author").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, translateError(err, "Post", ids)
	}
	byID := make(map[uint]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	ordered := make([]models.Post, 0, len(ranks))
	likes := make([]int, 0, len(ranks))
	for _, rank := range ranks {
		if p, ok := byID[rank.PostID]; ok {
			ordered = append(ordered, p)
			likes = append(likes, rank.LikesCount)
		}
	}

	result, err = r.withTags(ctx, ordered)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].LikesCount = likes[i]
	}

	if err = r.AttachCommentsCount(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// FetchWithCommentsCount loads the posts selected by scope with authors and tags,
// then attaches comment counts. The scope's ordering is preserved.
func (r *postRepository) FetchWithCommentsCount(ctx context.Context, scope Scope) (result []models.PostWithCounts, err error) {
	ctx, done := r.observe(ctx, "Post.FetchWithCommentsCount", "posts")
	defer func() { done(err) }()

	q := r.reader(ctx).Model(&models.Post{}).Preload("Author")
	if scope != nil {
		q = scope(q)
	}

	var posts []models.Post
	if err = q.Find(&posts).Error; err != nil {
		return nil, translateError(err, "Post", "list")
	}

	result, err = r.withTags(ctx, posts)
	if err != nil {
		return nil, err
	}
	if err = r.AttachCommentsCount(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postRepository) Fresh(ctx context.Context, limit int) ([]models.PostWithCounts, error) {
	return r.FetchWithCommentsCount(ctx, func(db *gorm.DB) *gorm.DB {
		db = byNewest(db)
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	})
}

func (r *postRepository) ByTag(ctx context.Context, tagID uint, limit int) ([]models.PostWithCounts, error) {
	return r.FetchWithCommentsCount(ctx, func(db *gorm.DB) *gorm.DB {
		tagged := r.read.Model(&models.PostTag{}).Select("post_id").Where("tag_id = ?", tagID)
		db = byNewest(db.Where("posts.id IN (?)", tagged))
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	})
}

type detailCounts struct {
	CommentsCount int
	LikesCount    int
}

// GetBySlug returns the newest post carrying slug, with comments and both counts.
func (r *postRepository) GetBySlug(ctx context.Context, slug string) (detail *models.PostDetail, err error) {
	ctx, done := r.observe(ctx, "Post.GetBySlug", "posts")
	defer func() { done(err) }()

	var post models.Post
	err = r.reader(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("published_at ASC").Order("id ASC")
		}).
		Preload("Comments.Author").
		Where("slug = ?", slug).
		Order("published_at DESC").
		First(&post).Error
	if err != nil {
		return nil, translateError(err, "Post", slug)
	}

	var counts detailCounts
	err = r.reader(ctx).Raw(
		`SELECT
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = ?) AS comments_count,
			(SELECT COUNT(DISTINCT user_id) FROM post_likes WHERE post_likes.post_id = ?) AS likes_count`,
		post.ID, post.ID,
	).Scan(&counts).Error
	if err != nil {
		return nil, translateError(err, "Post", slug)
	}

	tagsByPost, err := loadTagsByPost(ctx, r.read, r.tags, []uint{post.ID})
	if err != nil {
		return nil, err
	}

	comments := post.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	post.Comments = nil

	tags := tagsByPost[post.ID]
	if tags == nil {
		tags = []models.TagWithCount{}
	}

	return &models.PostDetail{
		PostWithCounts: models.PostWithCounts{
			Post:          post,
			Tags:          tags,
			LikesCount:    counts.LikesCount,
			CommentsCount: counts.CommentsCount,
		},
		Comments: comments,
	}, nil
}

type commentCount struct {
	PostID        uint
	CommentsCount int
}

// AttachCommentsCount fills CommentsCount for an already materialized set of posts
// with one grouped query. Posts without comments get 0.
func (r *postRepository) AttachCommentsCount(ctx context.Context, posts []models.PostWithCounts) (err error) {
	if len(posts) == 0 {
		return nil
	}

	ctx, done := r.observe(ctx, "Post.AttachCommentsCount", "comments")
	defer func() { done(err) }()

	ids := make([]uint, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].Post.ID)
	}

	var rows []commentCount
	err = r.reader(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS comments_count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return translateError(err, "Comment", ids)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.PostID] = row.CommentsCount
	}
	for i := range posts {
		posts[i].CommentsCount = counts[posts[i].Post.ID]
	}
	return nil
}

// withTags pairs each post with its tags, keeping the input order.
func (r *postRepository) withTags(ctx context.Context, posts []models.Post) ([]models.PostWithCounts, error) {
	tagsByPost, err := loadTagsByPost(ctx, r.read, r.tags, postIDs(posts))
	if err != nil {
		return nil, err
	}

	result := make([]models.PostWithCounts, 0, len(posts))
	for _, p := range posts {
		tags := tagsByPost[p.ID]
		if tags == nil {
			tags = []models.TagWithCount{}
		}
		result = append(result, models.PostWithCounts{Post: p, Tags: tags})
	}
	return result, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, done := r.observe(ctx, "Post.Create", "posts")
	defer func() { done(err) }()

	if err = validation.ValidatePostTitle(post.Title); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err = validation.ValidatePostSlug(post.Slug); err != nil {
		return models.NewValidationError(err.Error())
	}

	var author models.User
	if err = r.writer(ctx).Select("id", "is_staff").First(&author, post.AuthorID).Error; err != nil {
		return translateError(err, "User", post.AuthorID)
	}
	if !author.IsStaff {
		return models.NewValidationError("post author must be a staff user")
	}

	if post.PublishedAt.IsZero() {
		post.PublishedAt = time.Now().UTC()
	}
	if err = r.writer(ctx).Omit("Author", "Likes", "Comments").Create(post).Error; err != nil {
		return translateError(err, "Post", post.Slug)
	}
	r.invalidatePopular(ctx)
	return nil
}

// Like records that userID likes postID. Liking twice is a no-op.
func (r *postRepository) Like(ctx context.Context, postID, userID uint) (err error) {
	ctx, done := r.observe(ctx, "Post.Like", "post_likes")
	defer func() { done(err) }()

	err = r.writer(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{PostID: postID, UserID: userID}).Error
	if err != nil {
		return translateError(err, "Like", postID)
	}
	r.invalidatePopular(ctx)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID uint) (err error) {
	ctx, done := r.observe(ctx, "Post.Unlike", "post_likes")
	defer func() { done(err) }()

	err = r.writer(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
	if err != nil {
		return translateError(err, "Like", postID)
	}
	r.invalidatePopular(ctx)
	return nil
}

// Delete removes a post with its comments, tag links and likes.
func (r *postRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, done := r.observe(ctx, "Post.Delete", "posts")
	defer func() { done(err) }()

	res := r.writer(ctx).Select(clause.Associations).Delete(&models.Post{ID: id})
	if res.Error != nil {
		return translateError(res.Error, "Post", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.invalidatePopular(ctx)
	return nil
}
