package repository

import (
	"context"
	"sort"

	"sensive/internal/models"
	"sensive/internal/validation"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	Popular(ctx context.Context, limit int) ([]models.TagWithCount, error)
	WithPostsCount(ctx context.Context, ids []uint) ([]models.TagWithCount, error)
	GetByTitle(ctx context.Context, title string) (*models.TagWithCount, error)
	GetOrCreate(ctx context.Context, title string) (*models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
}

type tagRepository struct {
	base
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB, opts ...Option) TagRepository {
	return &tagRepository{base: newBase(db, opts...)}
}

// withPostsCount annotates tags with the number of posts linked to them.
func withPostsCount(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Tag{}).
		Select("tags.id, tags.title, COUNT(post_tags.post_id) AS posts_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.title")
}

func (r *tagRepository) Popular(ctx context.Context, limit int) (tags []models.TagWithCount, err error) {
	ctx, done := r.observe(ctx, "Tag.Popular", "tags")
	defer func() { done(err) }()

	q := withPostsCount(r.reader(ctx)).Order("posts_count DESC, tags.title ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	tags = []models.TagWithCount{}
	if err = q.Scan(&tags).Error; err != nil {
		return nil, translateError(err, "Tag", "popular")
	}
	return tags, nil
}

func (r *tagRepository) WithPostsCount(ctx context.Context, ids []uint) (tags []models.TagWithCount, err error) {
	tags = []models.TagWithCount{}
	if len(ids) == 0 {
		return tags, nil
	}

	ctx, done := r.observe(ctx, "Tag.WithPostsCount", "tags")
	defer func() { done(err) }()

	if err = withPostsCount(r.reader(ctx)).Where("tags.id IN ?", ids).Scan(&tags).Error; err != nil {
		return nil, translateError(err, "Tag", ids)
	}
	return tags, nil
}

func (r *tagRepository) GetByTitle(ctx context.Context, title string) (tag *models.TagWithCount, err error) {
	ctx, done := r.observe(ctx, "Tag.GetByTitle", "tags")
	defer func() { done(err) }()

	normalized := models.NormalizeTagTitle(title)
	var found []models.TagWithCount
	if err = withPostsCount(r.reader(ctx)).Where("tags.title = ?", normalized).Limit(1).Scan(&found).Error; err != nil {
		return nil, translateError(err, "Tag", normalized)
	}
	if len(found) == 0 {
		return nil, models.NewNotFoundError("Tag", normalized)
	}
	return &found[0], nil
}

func (r *tagRepository) GetOrCreate(ctx context.Context, title string) (tag *models.Tag, err error) {
	ctx, done := r.observe(ctx, "Tag.GetOrCreate", "tags")
	defer func() { done(err) }()

	normalized := models.NormalizeTagTitle(title)
	if err = validation.ValidateTagTitle(normalized); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tag = &models.Tag{}
	res := r.writer(ctx).Where(models.Tag{Title: normalized}).FirstOrCreate(tag)
	if err = res.Error; err != nil {
		return nil, translateError(err, "Tag", normalized)
	}
	// Popular lists tags without posts too.
	if res.RowsAffected > 0 {
		r.invalidatePopular(ctx)
	}
	return tag, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) (err error) {
	ctx, done := r.observe(ctx, "Tag.Create", "tags")
	defer func() { done(err) }()

	tag.Title = models.NormalizeTagTitle(tag.Title)
	if err = validation.ValidateTagTitle(tag.Title); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err = r.writer(ctx).Create(tag).Error; err != nil {
		return translateError(err, "Tag", tag.Title)
	}
	r.invalidatePopular(ctx)
	return nil
}

// loadTagsByPost returns each post's tags, annotated with posts counts and
// ordered alphabetically. Posts without tags are absent from the map.
func loadTagsByPost(ctx context.Context, db *gorm.DB, tags TagRepository, ids []uint) (map[uint][]models.TagWithCount, error) {
	byPost := make(map[uint][]models.TagWithCount, len(ids))
	if len(ids) == 0 {
		return byPost, nil
	}

	var links []models.PostTag
	if err := db.WithContext(ctx).Where("post_id IN ?", ids).Find(&links).Error; err != nil {
		return nil, translateError(err, "PostTag", ids)
	}
	if len(links) == 0 {
		return byPost, nil
	}

	tagIDs := make([]uint, 0, len(links))
	seen := make(map[uint]struct{}, len(links))
	for _, link := range links {
		if _, ok := seen[link.TagID]; ok {
			continue
		}
		seen[link.TagID] = struct{}{}
		tagIDs = append(tagIDs, link.TagID)
	}

	annotated, err := tags.WithPostsCount(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.TagWithCount, len(annotated))
	for _, t := range annotated {
		byID[t.ID] = t
	}

	for _, link := range links {
		if t, ok := byID[link.TagID]; ok {
			byPost[link.PostID] = append(byPost[link.PostID], t)
		}
	}
	for id := range byPost {
		sortTagsByTitle(byPost[id])
	}
	return byPost, nil
}

func sortTagsByTitle(tags []models.TagWithCount) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Title < tags[j].Title
	})
}
