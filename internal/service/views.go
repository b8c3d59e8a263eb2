package service

import "time"

// TagView is a tag as rendered in sidebars and post cards.
type TagView struct {
	Title        string `json:"title"`
	PostsWithTag int    `json:"posts_with_tag"`
}

// PostView is a post card as rendered in lists.
type PostView struct {
	Title          string    `json:"title"`
	TeaserText     string    `json:"teaser_text"`
	Author         string    `json:"author"`
	CommentsAmount int       `json:"comments_amount"`
	ImageURL       string    `json:"image_url,omitempty"`
	PublishedAt    time.Time `json:"published_at"`
	Slug           string    `json:"slug"`
	Tags           []TagView `json:"tags"`
	FirstTagTitle  string    `json:"first_tag_title"`
}

// CommentView is a single comment under a post.
type CommentView struct {
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"published_at"`
	Author      string    `json:"author"`
}

// PostDetailView is the full post shown on its own page.
type PostDetailView struct {
	Title          string        `json:"title"`
	Text           string        `json:"text"`
	Author         string        `json:"author"`
	Comments       []CommentView `json:"comments"`
	CommentsAmount int           `json:"comments_amount"`
	LikesAmount    int           `json:"likes_amount"`
	ImageURL       string        `json:"image_url,omitempty"`
	PublishedAt    time.Time     `json:"published_at"`
	Slug           string        `json:"slug"`
	Tags           []TagView     `json:"tags"`
}

// Sidebar is the popular data shown on every page.
type Sidebar struct {
	MostPopularPosts []PostView `json:"most_popular_posts"`
	PopularTags      []TagView  `json:"popular_tags"`
}

// IndexPage is the home page context.
type IndexPage struct {
	Sidebar
	PagePosts []PostView `json:"page_posts"`
}

// PostDetailPage is the post page context.
type PostDetailPage struct {
	Sidebar
	Post PostDetailView `json:"post"`
}

// TagFilterPage is the context of the posts-by-tag page.
type TagFilterPage struct {
	Sidebar
	Tag   string     `json:"tag"`
	Posts []PostView `json:"posts"`
}

// ArchiveEntry is one post in a yearly archive.
type ArchiveEntry struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"published_at"`
}

// ArchivePage lists the posts of one calendar year, oldest first.
type ArchivePage struct {
	Year  int            `json:"year"`
	Posts []ArchiveEntry `json:"posts"`
}
