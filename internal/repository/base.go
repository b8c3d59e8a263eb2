// Package repository implements the data access layer for the blog.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sensive/internal/cache"
	"sensive/internal/models"
	"sensive/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Scope narrows a post query, e.g. by ordering or filtering.
type Scope func(*gorm.DB) *gorm.DB

// Option configures a repository.
type Option func(*base)

// WithReadReplica routes read queries to read. A nil handle keeps the primary.
func WithReadReplica(read *gorm.DB) Option {
	return func(b *base) {
		if read != nil {
			b.read = read
		}
	}
}

// WithCache lets writes invalidate cached popularity data.
func WithCache(store *cache.Store) Option {
	return func(b *base) {
		b.cache = store
	}
}

// base carries the handles and instrumentation shared by every repository.
type base struct {
	db      *gorm.DB
	read    *gorm.DB
	cache   *cache.Store
	tracer  *observability.TraceLayer
	metrics *observability.DatabaseMetrics
}

func newBase(db *gorm.DB, opts ...Option) base {
	b := base{
		db:      db,
		read:    db,
		tracer:  observability.GetTraceLayer(dbSystem(db)),
		metrics: observability.NewDatabaseMetrics(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func dbSystem(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return ""
	}
	if name := db.Dialector.Name(); name != "postgres" {
		return name
	}
	return "postgresql"
}

// observe starts a span and a latency timer for one repository call.
// The returned function must be called with the call's final error.
func (b *base) observe(ctx context.Context, method, table string) (context.Context, func(error)) {
	ctx, span := b.tracer.TraceRepositoryMethod(ctx, method, table)
	stop := b.metrics.TrackQuery(method, table)
	return ctx, func(err error) {
		stop()
		observability.EndSpan(span, err)
	}
}

func (b *base) reader(ctx context.Context) *gorm.DB {
	return b.read.WithContext(ctx)
}

func (b *base) writer(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

func (b *base) invalidatePopular(ctx context.Context) {
	b.cache.Invalidate(ctx, cache.PopularKeys()...)
}

// translateError maps driver errors onto AppError codes. Anything else is wrapped.
func translateError(err error, resource string, key any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, key)
	case isUniqueConstraintError(err):
		return models.NewConflictError(fmt.Sprintf("%s %v already exists", resource, key), err)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s query: %w", strings.ToLower(resource), err)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].ID)
	}
	return ids
}
