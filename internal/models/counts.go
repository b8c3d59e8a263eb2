package models

// TagWithCount is a tag annotated with the number of posts carrying it.
type TagWithCount struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	PostsCount int    `json:"posts_count"`
}

// PostWithCounts pairs a post with aggregates computed at query time.
// LikesCount is only filled by queries that rank by likes.
type PostWithCounts struct {
	Post          Post           `json:"post"`
	Tags          []TagWithCount `json:"tags"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
}

// PostDetail is a single post with its comments and both counts.
type PostDetail struct {
	PostWithCounts
	Comments []Comment `json:"comments"`
}
