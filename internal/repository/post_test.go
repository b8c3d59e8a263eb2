package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"sensive/internal/cache"
	"sensive/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Popular(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	author := f.user(true)
	readers := []models.User{f.user(false), f.user(false), f.user(false)}
	goTag := f.tag("go")
	dbTag := f.tag("databases")

	p1 := f.post(author, "first", at(0), goTag, dbTag)
	p2 := f.post(author, "second", at(1), goTag)
	p3 := f.post(author, "third", at(2))

	f.like(p1, readers...)
	f.like(p2, readers[0])
	f.comment(p1, readers[0], "one", at(3))
	f.comment(p1, readers[1], "two", at(4))

	repo := NewPostRepository(db)

	posts, err := repo.Popular(ctx, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, p1.ID, posts[0].Post.ID)
	assert.Equal(t, 3, posts[0].LikesCount)
	assert.Equal(t, 2, posts[0].CommentsCount)
	assert.Equal(t, author.Username, posts[0].Post.Author.Username)

	assert.Equal(t, p2.ID, posts[1].Post.ID)
	assert.Equal(t, 1, posts[1].LikesCount)
	assert.Equal(t, 0, posts[1].CommentsCount)

	assert.Equal(t, p3.ID, posts[2].Post.ID)
	assert.Equal(t, 0, posts[2].LikesCount)
	assert.Empty(t, posts[2].Tags)

	// Tags come alphabetically with their own posts counts.
	require.Len(t, posts[0].Tags, 2)
	assert.Equal(t, "databases", posts[0].Tags[0].Title)
	assert.Equal(t, 1, posts[0].Tags[0].PostsCount)
	assert.Equal(t, "go", posts[0].Tags[1].Title)
	assert.Equal(t, 2, posts[0].Tags[1].PostsCount)

	top, err := repo.Popular(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, p1.ID, top[0].Post.ID)
	assert.Equal(t, p2.ID, top[1].Post.ID)
}

func TestPostRepository_PopularTiesPreferNewer(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)

	author := f.user(true)
	older := f.post(author, "older", at(0))
	newer := f.post(author, "newer", at(5))

	posts, err := NewPostRepository(db).Popular(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].Post.ID)
	assert.Equal(t, older.ID, posts[1].Post.ID)
}

func TestPostRepository_PopularEmpty(t *testing.T) {
	db := setupSQLiteDB(t)

	posts, err := NewPostRepository(db).Popular(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_Fresh(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	author := f.user(true)
	reader := f.user(false)

	var last models.Post
	for i := 0; i < 7; i++ {
		last = f.post(author, fmt.Sprintf("post-%d", i), at(i))
	}
	f.comment(last, reader, "first!", at(10))

	posts, err := NewPostRepository(db).Fresh(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, posts, 5)

	assert.Equal(t, last.ID, posts[0].Post.ID)
	assert.Equal(t, 1, posts[0].CommentsCount)
	for i := 1; i < len(posts); i++ {
		assert.True(t, posts[i-1].Post.PublishedAt.After(posts[i].Post.PublishedAt), "fresh posts must be strictly newest first")
		assert.Equal(t, 0, posts[i].CommentsCount)
	}
}

func TestPostRepository_FetchWithCommentsCountMatchesExactCounts(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	author := f.user(true)
	reader := f.user(false)

	want := map[string]int{"a": 0, "b": 1, "c": 4}
	for slug, n := range want {
		p := f.post(author, slug, at(len(slug)))
		for i := 0; i < n; i++ {
			f.comment(p, reader, fmt.Sprintf("%s-%d", slug, i), at(i))
		}
	}

	posts, err := NewPostRepository(db).FetchWithCommentsCount(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, posts, len(want))
	for _, p := range posts {
		assert.Equal(t, want[p.Post.Slug], p.CommentsCount, p.Post.Slug)
	}
}

func TestPostRepository_ByTag(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	author := f.user(true)
	goTag := f.tag("go")
	other := f.tag("rust")

	old := f.post(author, "old-go", at(0), goTag)
	recent := f.post(author, "new-go", at(3), goTag, other)
	f.post(author, "rust-only", at(5), other)

	repo := NewPostRepository(db)
	posts, err := repo.ByTag(context.Background(), goTag.ID, 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, recent.ID, posts[0].Post.ID)
	assert.Equal(t, old.ID, posts[1].Post.ID)
	assert.Len(t, posts[0].Tags, 2)

	limited, err := repo.ByTag(context.Background(), goTag.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPostRepository_GetBySlug(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	author := f.user(true)
	r1, r2 := f.user(false), f.user(false)
	tag := f.tag("go")

	f.post(author, "dup", at(0))
	newest := f.post(author, "dup", at(2), tag)
	f.like(newest, r1, r2)
	f.comment(newest, r2, "later", at(5))
	f.comment(newest, r1, "earlier", at(4))

	repo := NewPostRepository(db)

	detail, err := repo.GetBySlug(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, newest.ID, detail.Post.ID)
	assert.Equal(t, 2, detail.LikesCount)
	assert.Equal(t, 2, detail.CommentsCount)
	assert.Equal(t, author.Username, detail.Post.Author.Username)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "earlier", detail.Comments[0].Text)
	assert.Equal(t, r1.Username, detail.Comments[0].Author.Username)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "go", detail.Tags[0].Title)

	_, err = repo.GetBySlug(ctx, "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_Year(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	author := f.user(true)

	f.post(author, "last-of-2023", baseTime.AddDate(-1, 9, 21))
	early := f.post(author, "early-2024", baseTime.AddDate(0, -2, -9))
	late := f.post(author, "late-2024", baseTime.AddDate(0, 9, 20))
	f.post(author, "first-of-2025", baseTime.AddDate(0, 9, 22))

	posts, err := NewPostRepository(db).Year(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, early.ID, posts[0].ID)
	assert.Equal(t, late.ID, posts[1].ID)
}

func TestPostRepository_CreateRequiresStaffAuthor(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	ctx := context.Background()
	repo := NewPostRepository(db)

	reader := f.user(false)
	err := repo.Create(ctx, &models.Post{Title: "Nope", Text: "x", Slug: "nope", AuthorID: reader.ID})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	err = repo.Create(ctx, &models.Post{Title: "Ghost", Text: "x", Slug: "ghost", AuthorID: 999})
	assert.True(t, models.IsNotFound(err))

	err = repo.Create(ctx, &models.Post{Title: "Bad slug", Text: "x", Slug: "Bad Slug", AuthorID: reader.ID})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	staff := f.user(true)
	tag := f.tag("go")
	post := &models.Post{Title: "Hello", Text: "x", Slug: "hello", AuthorID: staff.ID, Tags: []models.Tag{tag}}
	require.NoError(t, repo.Create(ctx, post))
	assert.NotZero(t, post.ID)
	assert.False(t, post.PublishedAt.IsZero())

	var links int64
	require.NoError(t, db.Model(&models.PostTag{}).Where("post_id = ?", post.ID).Count(&links).Error)
	assert.Equal(t, int64(1), links)
}

func TestPostRepository_LikeIsIdempotent(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	author := f.user(true)
	reader := f.user(false)
	post := f.post(author, "liked", at(0))
	repo := NewPostRepository(db)

	require.NoError(t, repo.Like(ctx, post.ID, reader.ID))
	require.NoError(t, repo.Like(ctx, post.ID, reader.ID))

	detail, err := repo.GetBySlug(ctx, "liked")
	require.NoError(t, err)
	assert.Equal(t, 1, detail.LikesCount)

	require.NoError(t, repo.Unlike(ctx, post.ID, reader.ID))
	detail, err = repo.GetBySlug(ctx, "liked")
	require.NoError(t, err)
	assert.Equal(t, 0, detail.LikesCount)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	author := f.user(true)
	reader := f.user(false)
	tag := f.tag("go")
	post := f.post(author, "doomed", at(0), tag)
	f.like(post, reader)
	f.comment(post, reader, "bye", at(1))

	repo := NewPostRepository(db)
	require.NoError(t, repo.Delete(ctx, post.ID))

	for _, model := range []any{&models.Comment{}, &models.PostLike{}, &models.PostTag{}, &models.Post{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T rows left", model)
	}
	var tags int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.Equal(t, int64(1), tags, "tags outlive their posts")

	assert.True(t, models.IsNotFound(repo.Delete(ctx, post.ID)))
}

func TestPostRepository_WritesInvalidatePopularCache(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	author := f.user(true)
	reader := f.user(false)
	post := f.post(author, "cached", at(0))

	require.NoError(t, mr.Set(cache.SidebarKey, "{}"))
	repo := NewPostRepository(db, WithCache(cache.NewStore(client)))
	require.NoError(t, repo.Like(ctx, post.ID, reader.ID))
	assert.False(t, mr.Exists(cache.SidebarKey))
}

func TestPostRepository_AttachCommentsCountSingleQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	posts := []models.PostWithCounts{
		{Post: models.Post{ID: 1}},
		{Post: models.Post{ID: 2}},
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT post_id, COUNT(*) AS comments_count FROM "comments" WHERE post_id IN ($1,$2) GROUP BY`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "comments_count"}).AddRow(2, 7))

	require.NoError(t, repo.AttachCommentsCount(ctx, posts))
	assert.Equal(t, 0, posts[0].CommentsCount)
	assert.Equal(t, 7, posts[1].CommentsCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_AttachCommentsCountEmptyIssuesNoQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	require.NoError(t, repo.AttachCommentsCount(context.Background(), nil))
	require.NoError(t, repo.AttachCommentsCount(context.Background(), []models.PostWithCounts{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_LikeUsesOnConflictDoNothing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "post_likes" .* ON CONFLICT DO NOTHING`).
		WithArgs(3, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.Like(context.Background(), 3, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}
