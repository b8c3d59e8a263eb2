// Package service assembles blog pages from repository queries.
package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"sensive/internal/cache"
	"sensive/internal/models"
	"sensive/internal/observability"
	"sensive/internal/repository"
)

const (
	// PopularLimit is the size of the popular posts and tags sidebars.
	PopularLimit = 5
	// FreshLimit is the number of newest posts on the home page.
	FreshLimit = 5
	// TagPostsLimit caps the posts listed on a tag page.
	TagPostsLimit = 20
	// TeaserLength is the teaser size in characters.
	TeaserLength = 200
)

// BlogService builds page contexts for the HTML and JSON handlers.
type BlogService struct {
	posts      repository.PostRepository
	tags       repository.TagRepository
	cache      *cache.Store
	media      *MediaStorage
	popularTTL time.Duration
	tracer     *observability.TraceLayer
}

// NewBlogService wires a BlogService. store may be nil and popularTTL may be 0
// to disable sidebar caching.
func NewBlogService(
	posts repository.PostRepository,
	tags repository.TagRepository,
	store *cache.Store,
	media *MediaStorage,
	popularTTL time.Duration,
) *BlogService {
	if media == nil {
		media = NewMediaStorage(nil)
	}
	return &BlogService{
		posts:      posts,
		tags:       tags,
		cache:      store,
		media:      media,
		popularTTL: popularTTL,
		tracer:     observability.GetTraceLayer(""),
	}
}

// PopularData returns the top popular tags and posts. The default-sized
// sidebar is cached for popularTTL.
func (s *BlogService) PopularData(ctx context.Context, limit int) (sidebar *Sidebar, err error) {
	ctx, span := s.tracer.TraceServiceCall(ctx, "BlogService", "PopularData")
	defer func() { observability.EndSpan(span, err) }()

	if limit <= 0 {
		limit = PopularLimit
	}

	sidebar = &Sidebar{}
	load := func() error {
		loaded, err := s.loadPopular(ctx, limit)
		if err != nil {
			return err
		}
		*sidebar = *loaded
		return nil
	}

	if limit == PopularLimit && s.popularTTL > 0 {
		err = s.cache.Aside(ctx, cache.SidebarKey, sidebar, s.popularTTL, load)
	} else {
		err = load()
	}
	if err != nil {
		return nil, err
	}
	return sidebar, nil
}

func (s *BlogService) loadPopular(ctx context.Context, limit int) (*Sidebar, error) {
	tags, err := s.tags.Popular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	posts, err := s.posts.Popular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("popular posts: %w", err)
	}
	return &Sidebar{
		MostPopularPosts: s.SerializePosts(posts),
		PopularTags:      SerializeTags(tags),
	}, nil
}

// Index builds the home page: popular sidebars and the freshest posts.
func (s *BlogService) Index(ctx context.Context) (page *IndexPage, err error) {
	ctx, span := s.tracer.TraceServiceCall(ctx, "BlogService", "Index")
	defer func() { observability.EndSpan(span, err) }()

	sidebar, err := s.PopularData(ctx, PopularLimit)
	if err != nil {
		return nil, err
	}
	fresh, err := s.posts.Fresh(ctx, FreshLimit)
	if err != nil {
		return nil, fmt.Errorf("fresh posts: %w", err)
	}
	return &IndexPage{
		Sidebar:   *sidebar,
		PagePosts: s.SerializePosts(fresh),
	}, nil
}

// PostDetail builds the page of the newest post carrying slug.
func (s *BlogService) PostDetail(ctx context.Context, slug string) (page *PostDetailPage, err error) {
	ctx, span := s.tracer.TraceServiceCall(ctx, "BlogService", "PostDetail")
	defer func() { observability.EndSpan(span, err) }()

	detail, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	sidebar, err := s.PopularData(ctx, PopularLimit)
	if err != nil {
		return nil, err
	}
	return &PostDetailPage{
		Sidebar: *sidebar,
		Post:    s.SerializePostDetail(detail),
	}, nil
}

// TagFilter builds the page listing up to TagPostsLimit posts of one tag.
// The title is matched case-insensitively.
func (s *BlogService) TagFilter(ctx context.Context, title string) (page *TagFilterPage, err error) {
	ctx, span := s.tracer.TraceServiceCall(ctx, "BlogService", "TagFilter")
	defer func() { observability.EndSpan(span, err) }()

	tag, err := s.tags.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ByTag(ctx, tag.ID, TagPostsLimit)
	if err != nil {
		return nil, fmt.Errorf("posts by tag: %w", err)
	}
	sidebar, err := s.PopularData(ctx, PopularLimit)
	if err != nil {
		return nil, err
	}
	return &TagFilterPage{
		Sidebar: *sidebar,
		Tag:     tag.Title,
		Posts:   s.SerializePosts(posts),
	}, nil
}

// Archive lists the posts published in year, oldest first.
func (s *BlogService) Archive(ctx context.Context, year int) (page *ArchivePage, err error) {
	ctx, span := s.tracer.TraceServiceCall(ctx, "BlogService", "Archive")
	defer func() { observability.EndSpan(span, err) }()

	if year < 1 || year > 9999 {
		return nil, models.NewValidationError("year must be between 1 and 9999")
	}
	posts, err := s.posts.Year(ctx, year)
	if err != nil {
		return nil, err
	}

	entries := make([]ArchiveEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, ArchiveEntry{
			Title:       p.Title,
			Slug:        p.Slug,
			Author:      p.Author.Username,
			PublishedAt: p.PublishedAt,
		})
	}
	return &ArchivePage{Year: year, Posts: entries}, nil
}

// SerializePost flattens a post with counts into a card view.
func (s *BlogService) SerializePost(p models.PostWithCounts) PostView {
	tags := SerializeTags(p.Tags)
	first := ""
	if len(tags) > 0 {
		first = tags[0].Title
	}
	return PostView{
		Title:          p.Post.Title,
		TeaserText:     Teaser(p.Post.Text),
		Author:         p.Post.Author.Username,
		CommentsAmount: p.CommentsCount,
		ImageURL:       s.media.URL(p.Post.Image),
		PublishedAt:    p.Post.PublishedAt,
		Slug:           p.Post.Slug,
		Tags:           tags,
		FirstTagTitle:  first,
	}
}

// SerializePosts serializes posts keeping their order.
func (s *BlogService) SerializePosts(posts []models.PostWithCounts) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, s.SerializePost(p))
	}
	return views
}

// SerializePostDetail flattens a post with its comments.
func (s *BlogService) SerializePostDetail(d *models.PostDetail) PostDetailView {
	comments := make([]CommentView, 0, len(d.Comments))
	for _, c := range d.Comments {
		comments = append(comments, SerializeComment(c))
	}
	return PostDetailView{
		Title:          d.Post.Title,
		Text:           d.Post.Text,
		Author:         d.Post.Author.Username,
		Comments:       comments,
		CommentsAmount: d.CommentsCount,
		LikesAmount:    d.LikesCount,
		ImageURL:       s.media.URL(d.Post.Image),
		PublishedAt:    d.Post.PublishedAt,
		Slug:           d.Post.Slug,
		Tags:           SerializeTags(d.Tags),
	}
}

// SerializeTag flattens an annotated tag.
func SerializeTag(t models.TagWithCount) TagView {
	return TagView{Title: t.Title, PostsWithTag: t.PostsCount}
}

// SerializeTags serializes tags keeping their order.
func SerializeTags(tags []models.TagWithCount) []TagView {
	views := make([]TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, SerializeTag(t))
	}
	return views
}

// SerializeComment flattens a comment with its author's username.
func SerializeComment(c models.Comment) CommentView {
	return CommentView{
		Text:        c.Text,
		PublishedAt: c.PublishedAt,
		Author:      c.Author.Username,
	}
}

// Teaser returns the first TeaserLength characters of text.
func Teaser(text string) string {
	if utf8.RuneCountInString(text) <= TeaserLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:TeaserLength])
}
