package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"sensive/internal/database"
	"sensive/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a fresh in-memory database with the full schema.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

type fixture struct {
	t  *testing.T
	db *gorm.DB
	n  int
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	return &fixture{t: t, db: db}
}

func (f *fixture) user(staff bool) models.User {
	f.n++
	u := models.User{
		Username: fmt.Sprintf("user%d", f.n),
		Email:    fmt.Sprintf("user%d@example.com", f.n),
		Password: "hash",
		IsStaff:  staff,
	}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) tag(title string) models.Tag {
	tag := models.Tag{Title: title}
	require.NoError(f.t, f.db.Create(&tag).Error)
	return tag
}

func (f *fixture) post(author models.User, slug string, published time.Time, tags ...models.Tag) models.Post {
	p := models.Post{
		Title:       "Post " + slug,
		Text:        "Body of " + slug,
		Slug:        slug,
		PublishedAt: published.UTC(),
		AuthorID:    author.ID,
	}
	require.NoError(f.t, f.db.Omit("Author", "Tags", "Likes", "Comments").Create(&p).Error)
	for _, tag := range tags {
		require.NoError(f.t, f.db.Create(&models.PostTag{PostID: p.ID, TagID: tag.ID}).Error)
	}
	return p
}

func (f *fixture) like(p models.Post, users ...models.User) {
	for _, u := range users {
		require.NoError(f.t, f.db.Create(&models.PostLike{PostID: p.ID, UserID: u.ID}).Error)
	}
}

func (f *fixture) comment(p models.Post, author models.User, text string, published time.Time) models.Comment {
	c := models.Comment{PostID: p.ID, AuthorID: author.ID, Text: text, PublishedAt: published.UTC()}
	require.NoError(f.t, f.db.Omit("Author").Create(&c).Error)
	return c
}

var baseTime = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func at(days int) time.Time {
	return baseTime.AddDate(0, 0, days)
}
