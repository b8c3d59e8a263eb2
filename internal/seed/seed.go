package seed

import (
	"context"
	"fmt"
	"log/slog"

	"sensive/internal/middleware"
	"sensive/internal/models"
	"sensive/internal/repository"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumStaff           int
	NumReaders         int
	NumTags            int
	NumPosts           int
	MaxTagsPerPost     int
	MaxCommentsPerPost int
	// MaxDays bounds how far back posts are published.
	MaxDays int
	// ImageRatio is the share of posts that get a picsum image, 0..1.
	ImageRatio float64
	// Password of every seeded account; DefaultPassword when empty.
	Password    string
	ShouldClean bool
	SkipBcrypt  bool
	RandSeed    int64
}

// DefaultOptions returns a small but lively demo data set.
func DefaultOptions() Options {
	return Options{
		NumStaff:           3,
		NumReaders:         20,
		NumTags:            12,
		NumPosts:           40,
		MaxTagsPerPost:     3,
		MaxCommentsPerPost: 6,
		MaxDays:            365,
		ImageRatio:         0.7,
	}
}

// Summary reports how many rows a seeding run created.
type Summary struct {
	Users    int
	Tags     int
	Posts    int
	Likes    int
	Comments int
}

// Seeder writes generated data through the repositories.
type Seeder struct {
	db       *gorm.DB
	users    repository.UserRepository
	tags     repository.TagRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewSeeder creates a Seeder. repoOpts are passed to every repository, e.g.
// repository.WithCache so seeding drops stale popularity data.
func NewSeeder(db *gorm.DB, repoOpts ...repository.Option) *Seeder {
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db, repoOpts...),
		tags:     repository.NewTagRepository(db, repoOpts...),
		posts:    repository.NewPostRepository(db, repoOpts...),
		comments: repository.NewCommentRepository(db, repoOpts...),
	}
}

// Seed populates the database with demo data
func (s *Seeder) Seed(ctx context.Context, opts Options) (*Summary, error) {
	if opts.NumStaff <= 0 && opts.NumPosts > 0 {
		return nil, fmt.Errorf("at least one staff user is required to author %d posts", opts.NumPosts)
	}

	middleware.Logger.InfoContext(ctx, "Starting database seeding",
		slog.Int("staff", opts.NumStaff),
		slog.Int("readers", opts.NumReaders),
		slog.Int("tags", opts.NumTags),
		slog.Int("posts", opts.NumPosts),
	)

	if opts.ShouldClean {
		if err := s.Clean(ctx); err != nil {
			return nil, err
		}
	}

	f, err := NewFactory(opts)
	if err != nil {
		return nil, err
	}
	summary := &Summary{}

	staff, err := s.createUsers(ctx, f, opts.NumStaff, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create staff users: %w", err)
	}
	readers, err := s.createUsers(ctx, f, opts.NumReaders, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create readers: %w", err)
	}
	summary.Users = len(staff) + len(readers)

	tags, err := s.createTags(ctx, f, opts.NumTags)
	if err != nil {
		return nil, fmt.Errorf("failed to create tags: %w", err)
	}
	summary.Tags = len(tags)

	everyone := append(append([]*models.User{}, staff...), readers...)
	for i := 0; i < opts.NumPosts; i++ {
		author := staff[f.Intn(len(staff))]
		post := f.BuildPost(author)
		post.Tags = pickTags(f, tags, opts.MaxTagsPerPost)
		if err := s.posts.Create(ctx, post); err != nil {
			return nil, fmt.Errorf("failed to create post %q: %w", post.Slug, err)
		}
		summary.Posts++

		for _, idx := range pickDistinct(f, len(everyone), f.Intn(len(everyone)+1)) {
			if err := s.posts.Like(ctx, post.ID, everyone[idx].ID); err != nil {
				return nil, fmt.Errorf("failed to like post %d: %w", post.ID, err)
			}
			summary.Likes++
		}

		for n := f.Intn(opts.MaxCommentsPerPost + 1); n > 0; n-- {
			comment := f.BuildComment(everyone[f.Intn(len(everyone))], post)
			if err := s.comments.Create(ctx, comment); err != nil {
				return nil, fmt.Errorf("failed to comment on post %d: %w", post.ID, err)
			}
			summary.Comments++
		}
	}

	middleware.Logger.InfoContext(ctx, "Database seeding completed",
		slog.Int("users", summary.Users),
		slog.Int("tags", summary.Tags),
		slog.Int("posts", summary.Posts),
		slog.Int("likes", summary.Likes),
		slog.Int("comments", summary.Comments),
	)
	return summary, nil
}

func (s *Seeder) createUsers(ctx context.Context, f *Factory, count int, staff bool) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user := f.BuildUser(staff)
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createTags creates up to count distinct tags; random titles may collide,
// so a few extra draws are allowed.
func (s *Seeder) createTags(ctx context.Context, f *Factory, count int) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, count)
	seen := make(map[string]bool, count)
	for attempts := 0; len(tags) < count && attempts < count*5; attempts++ {
		title := f.TagTitle()
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		tag, err := s.tags.GetOrCreate(ctx, title)
		if err != nil {
			if models.HasCode(err, models.CodeValidation) {
				continue
			}
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func pickTags(f *Factory, tags []models.Tag, max int) []models.Tag {
	if len(tags) == 0 || max <= 0 {
		return nil
	}
	idx := pickDistinct(f, len(tags), f.Intn(max)+1)
	picked := make([]models.Tag, 0, len(idx))
	for _, i := range idx {
		picked = append(picked, tags[i])
	}
	return picked
}

// pickDistinct returns k distinct indexes in [0, n).
func pickDistinct(f *Factory, n, k int) []int {
	if k > n {
		k = n
	}
	perm := f.rng.Perm(n)
	return perm[:k]
}

// Clean removes all blog data. Schema and migration history are kept.
func (s *Seeder) Clean(ctx context.Context) error {
	middleware.Logger.InfoContext(ctx, "Clearing existing data")
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.PostLike{},
		&models.PostTag{},
		&models.Comment{},
		&models.Post{},
		&models.Tag{},
		&models.User{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clean %T: %w", model, err)
		}
	}
	return nil
}
