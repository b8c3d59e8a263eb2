package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sensive/internal/cache"
	"sensive/internal/config"
	"sensive/internal/models"
	"sensive/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	yearFn         func(context.Context, int) ([]models.Post, error)
	popularFn      func(context.Context, int) ([]models.PostWithCounts, error)
	fetchFn        func(context.Context, repository.Scope) ([]models.PostWithCounts, error)
	freshFn        func(context.Context, int) ([]models.PostWithCounts, error)
	byTagFn        func(context.Context, uint, int) ([]models.PostWithCounts, error)
	getBySlugFn    func(context.Context, string) (*models.PostDetail, error)
	attachCountsFn func(context.Context, []models.PostWithCounts) error
}

func (s *postRepoStub) Year(ctx context.Context, year int) ([]models.Post, error) {
	return s.yearFn(ctx, year)
}
func (s *postRepoStub) Popular(ctx context.Context, limit int) ([]models.PostWithCounts, error) {
	return s.popularFn(ctx, limit)
}
func (s *postRepoStub) FetchWithCommentsCount(ctx context.Context, scope repository.Scope) ([]models.PostWithCounts, error) {
	return s.fetchFn(ctx, scope)
}
func (s *postRepoStub) Fresh(ctx context.Context, limit int) ([]models.PostWithCounts, error) {
	return s.freshFn(ctx, limit)
}
func (s *postRepoStub) ByTag(ctx context.Context, tagID uint, limit int) ([]models.PostWithCounts, error) {
	return s.byTagFn(ctx, tagID, limit)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *postRepoStub) AttachCommentsCount(ctx context.Context, posts []models.PostWithCounts) error {
	return s.attachCountsFn(ctx, posts)
}
func (s *postRepoStub) Create(context.Context, *models.Post) error { return nil }
func (s *postRepoStub) Like(context.Context, uint, uint) error     { return nil }
func (s *postRepoStub) Unlike(context.Context, uint, uint) error   { return nil }
func (s *postRepoStub) Delete(context.Context, uint) error         { return nil }

func noopPostRepo() *postRepoStub {
	empty := func(context.Context, int) ([]models.PostWithCounts, error) { return []models.PostWithCounts{}, nil }
	return &postRepoStub{
		yearFn:    func(context.Context, int) ([]models.Post, error) { return []models.Post{}, nil },
		popularFn: empty,
		fetchFn: func(context.Context, repository.Scope) ([]models.PostWithCounts, error) {
			return []models.PostWithCounts{}, nil
		},
		freshFn: empty,
		byTagFn: func(context.Context, uint, int) ([]models.PostWithCounts, error) {
			return []models.PostWithCounts{}, nil
		},
		getBySlugFn: func(_ context.Context, slug string) (*models.PostDetail, error) {
			return nil, models.NewNotFoundError("Post", slug)
		},
		attachCountsFn: func(context.Context, []models.PostWithCounts) error { return nil },
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	popularFn    func(context.Context, int) ([]models.TagWithCount, error)
	getByTitleFn func(context.Context, string) (*models.TagWithCount, error)
}

func (s *tagRepoStub) Popular(ctx context.Context, limit int) ([]models.TagWithCount, error) {
	return s.popularFn(ctx, limit)
}
func (s *tagRepoStub) WithPostsCount(context.Context, []uint) ([]models.TagWithCount, error) {
	return []models.TagWithCount{}, nil
}
func (s *tagRepoStub) GetByTitle(ctx context.Context, title string) (*models.TagWithCount, error) {
	return s.getByTitleFn(ctx, title)
}
func (s *tagRepoStub) GetOrCreate(context.Context, string) (*models.Tag, error) {
	return &models.Tag{}, nil
}
func (s *tagRepoStub) Create(context.Context, *models.Tag) error { return nil }

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		popularFn: func(context.Context, int) ([]models.TagWithCount, error) { return []models.TagWithCount{}, nil },
		getByTitleFn: func(_ context.Context, title string) (*models.TagWithCount, error) {
			return nil, models.NewNotFoundError("Tag", title)
		},
	}
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

var published = time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)

func samplePost(slug string, comments int, tags ...models.TagWithCount) models.PostWithCounts {
	if tags == nil {
		tags = []models.TagWithCount{}
	}
	return models.PostWithCounts{
		Post: models.Post{
			ID:          1,
			Title:       "Title " + slug,
			Text:        "Body of " + slug,
			Slug:        slug,
			PublishedAt: published,
			Author:      models.User{Username: "editor"},
		},
		Tags:          tags,
		CommentsCount: comments,
	}
}

func TestSerializePost(t *testing.T) {
	svc := NewBlogService(noopPostRepo(), noopTagRepo(), nil, NewMediaStorage(&config.Config{MediaURL: "/uploads/"}), 0)

	p := samplePost("hello", 3,
		models.TagWithCount{Title: "django", PostsCount: 2},
		models.TagWithCount{Title: "go", PostsCount: 7},
	)
	p.Post.Text = strings.Repeat("ж", 250)
	p.Post.Image = "covers/hello.jpg"

	view := svc.SerializePost(p)
	assert.Equal(t, "Title hello", view.Title)
	assert.Equal(t, 200, len([]rune(view.TeaserText)))
	assert.Equal(t, "editor", view.Author)
	assert.Equal(t, 3, view.CommentsAmount)
	assert.Equal(t, "/uploads/covers/hello.jpg", view.ImageURL)
	assert.Equal(t, published, view.PublishedAt)
	assert.Equal(t, "hello", view.Slug)
	assert.Equal(t, "django", view.FirstTagTitle)
	assert.Equal(t, []TagView{{Title: "django", PostsWithTag: 2}, {Title: "go", PostsWithTag: 7}}, view.Tags)
}

func TestSerializePost_NoImageNoTags(t *testing.T) {
	svc := NewBlogService(noopPostRepo(), noopTagRepo(), nil, nil, 0)

	view := svc.SerializePost(samplePost("bare", 0))
	assert.Empty(t, view.ImageURL)
	assert.Empty(t, view.FirstTagTitle)
	assert.NotNil(t, view.Tags)
	assert.Equal(t, "Body of bare", view.TeaserText)
}

func TestPopularData_CachesSidebar(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	posts := noopPostRepo()
	tags := noopTagRepo()
	var limits []int
	posts.popularFn = func(_ context.Context, limit int) ([]models.PostWithCounts, error) {
		limits = append(limits, limit)
		return []models.PostWithCounts{samplePost("popular", 1)}, nil
	}
	tags.popularFn = func(context.Context, int) ([]models.TagWithCount, error) {
		return []models.TagWithCount{{Title: "go", PostsCount: 4}}, nil
	}

	svc := NewBlogService(posts, tags, cache.NewStore(client), nil, time.Minute)
	ctx := context.Background()

	first, err := svc.PopularData(ctx, PopularLimit)
	require.NoError(t, err)
	second, err := svc.PopularData(ctx, PopularLimit)
	require.NoError(t, err)

	assert.Equal(t, []int{PopularLimit}, limits)
	assert.Equal(t, first.PopularTags, second.PopularTags)
	require.Len(t, second.MostPopularPosts, 1)
	assert.Equal(t, "popular", second.MostPopularPosts[0].Slug)
	assert.Equal(t, []TagView{{Title: "go", PostsWithTag: 4}}, second.PopularTags)
	assert.True(t, mr.Exists(cache.SidebarKey))

	// A custom size bypasses the cache.
	_, err = svc.PopularData(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{PopularLimit, 3}, limits)
}

func TestPopularData_NoCacheWhenTTLZero(t *testing.T) {
	posts := noopPostRepo()
	calls := 0
	posts.popularFn = func(context.Context, int) ([]models.PostWithCounts, error) {
		calls++
		return []models.PostWithCounts{}, nil
	}
	svc := NewBlogService(posts, noopTagRepo(), nil, nil, 0)

	for i := 0; i < 2; i++ {
		_, err := svc.PopularData(context.Background(), PopularLimit)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestIndex(t *testing.T) {
	posts := noopPostRepo()
	posts.freshFn = func(_ context.Context, limit int) ([]models.PostWithCounts, error) {
		assert.Equal(t, FreshLimit, limit)
		return []models.PostWithCounts{samplePost("fresh", 2)}, nil
	}
	svc := NewBlogService(posts, noopTagRepo(), nil, nil, 0)

	page, err := svc.Index(context.Background())
	require.NoError(t, err)
	require.Len(t, page.PagePosts, 1)
	assert.Equal(t, 2, page.PagePosts[0].CommentsAmount)
	assert.NotNil(t, page.MostPopularPosts)
	assert.NotNil(t, page.PopularTags)
}

func TestIndex_PropagatesErrors(t *testing.T) {
	posts := noopPostRepo()
	posts.freshFn = func(context.Context, int) ([]models.PostWithCounts, error) {
		return nil, errors.New("db down")
	}
	svc := NewBlogService(posts, noopTagRepo(), nil, nil, 0)

	_, err := svc.Index(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestPostDetail(t *testing.T) {
	posts := noopPostRepo()
	posts.getBySlugFn = func(_ context.Context, slug string) (*models.PostDetail, error) {
		if slug != "known" {
			return nil, models.NewNotFoundError("Post", slug)
		}
		detail := &models.PostDetail{
			PostWithCounts: samplePost("known", 1, models.TagWithCount{Title: "go", PostsCount: 1}),
			Comments: []models.Comment{
				{Text: "great", PublishedAt: published, Author: models.User{Username: "reader"}},
			},
		}
		detail.LikesCount = 3
		detail.Post.Image = "https://cdn.example.com/a.png"
		return detail, nil
	}
	svc := NewBlogService(posts, noopTagRepo(), nil, nil, 0)

	page, err := svc.PostDetail(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Post.LikesAmount)
	assert.Equal(t, "Body of known", page.Post.Text)
	assert.Equal(t, "https://cdn.example.com/a.png", page.Post.ImageURL)
	require.Len(t, page.Post.Comments, 1)
	assert.Equal(t, CommentView{Text: "great", PublishedAt: published, Author: "reader"}, page.Post.Comments[0])

	_, err = svc.PostDetail(context.Background(), "unknown")
	assertNotFoundError(t, err)
}

func TestTagFilter(t *testing.T) {
	posts := noopPostRepo()
	tags := noopTagRepo()
	tags.getByTitleFn = func(_ context.Context, title string) (*models.TagWithCount, error) {
		if models.NormalizeTagTitle(title) != "go" {
			return nil, models.NewNotFoundError("Tag", title)
		}
		return &models.TagWithCount{ID: 7, Title: "go", PostsCount: 1}, nil
	}
	posts.byTagFn = func(_ context.Context, tagID uint, limit int) ([]models.PostWithCounts, error) {
		assert.Equal(t, uint(7), tagID)
		assert.Equal(t, TagPostsLimit, limit)
		return []models.PostWithCounts{samplePost("tagged", 0)}, nil
	}
	svc := NewBlogService(posts, tags, nil, nil, 0)

	page, err := svc.TagFilter(context.Background(), "GO")
	require.NoError(t, err)
	assert.Equal(t, "go", page.Tag)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "tagged", page.Posts[0].Slug)

	_, err = svc.TagFilter(context.Background(), "nope")
	assertNotFoundError(t, err)
}

func TestArchive(t *testing.T) {
	posts := noopPostRepo()
	posts.yearFn = func(_ context.Context, year int) ([]models.Post, error) {
		return []models.Post{{Title: "New year", Slug: "new-year", PublishedAt: published, Author: models.User{Username: "editor"}}}, nil
	}
	svc := NewBlogService(posts, noopTagRepo(), nil, nil, 0)

	page, err := svc.Archive(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, page.Year)
	assert.Equal(t, []ArchiveEntry{{Title: "New year", Slug: "new-year", Author: "editor", PublishedAt: published}}, page.Posts)

	_, err = svc.Archive(context.Background(), 0)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestMediaStorageURL(t *testing.T) {
	m := NewMediaStorage(nil)
	assert.Equal(t, "", m.URL(""))
	assert.Equal(t, "/media/a.jpg", m.URL("a.jpg"))
	assert.Equal(t, "/media/dir/a.jpg", m.URL("/dir/a.jpg"))
	assert.Equal(t, "https://picsum.photos/id/1/800/600", m.URL("https://picsum.photos/id/1/800/600"))
}

func TestTeaser(t *testing.T) {
	assert.Equal(t, "short", Teaser("short"))
	assert.Equal(t, strings.Repeat("a", TeaserLength), Teaser(strings.Repeat("a", TeaserLength+50)))
}
