// Package server contains the HTTP handlers for the blog pages and their JSON mirror.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "sensive/docs" // swagger docs
	"sensive/internal/cache"
	"sensive/internal/config"
	"sensive/internal/database"
	"sensive/internal/middleware"
	"sensive/internal/models"
	"sensive/internal/observability"
	"sensive/internal/repository"
	"sensive/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultRateLimitPerMinute = 100

// PageService builds the context of every blog page.
type PageService interface {
	Index(ctx context.Context) (*service.IndexPage, error)
	PostDetail(ctx context.Context, slug string) (*service.PostDetailPage, error)
	TagFilter(ctx context.Context, title string) (*service.TagFilterPage, error)
	Archive(ctx context.Context, year int) (*service.ArchivePage, error)
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	read           *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	pages          PageService
	views          *Renderer
}

// NewServer connects to the database and Redis and creates a server instance.
// Schema management is left to the bootstrap layer.
func NewServer(cfg *config.Config) (*Server, error) {
	handles, err := database.ConnectWithReplica(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	return NewServerWithDeps(cfg, handles, cache.InitRedis(cfg.RedisURL))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; pages are then served without cache.
func NewServerWithDeps(cfg *config.Config, handles *database.Handles, redisClient *redis.Client) (*Server, error) {
	if handles == nil || handles.Write == nil {
		return nil, errors.New("database handle is required")
	}

	store := cache.NewStore(redisClient)
	opts := []repository.Option{
		repository.WithReadReplica(handles.Read),
		repository.WithCache(store),
	}
	posts := repository.NewPostRepository(handles.Write, opts...)
	tags := repository.NewTagRepository(handles.Write, opts...)

	blog := service.NewBlogService(posts, tags, store, service.NewMediaStorage(cfg), cfg.PopularCacheTTL())

	read := handles.Read
	if read == nil {
		read = handles.Write
	}

	return &Server{
		config:         cfg,
		db:             handles.Write,
		read:           read,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("sensive"),
		pages:          blog,
		views:          NewRenderer(),
	}, nil
}

// NewApp creates the fiber application with the page renderer and error handler.
func (s *Server) NewApp() *fiber.App {
	if s.views == nil {
		s.views = NewRenderer()
	}
	return fiber.New(fiber.Config{
		AppName:      "Sensive",
		Views:        s.views,
		ErrorHandler: s.ErrorHandler,
		UnescapePath: true,
	})
}

func (s *Server) rateLimitPerMinute() int {
	if s.config == nil || s.config.RateLimitPerMinute <= 0 {
		return defaultRateLimitPerMinute
	}
	return s.config.RateLimitPerMinute
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8000,http://127.0.0.1:8000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,HEAD,OPTIONS",
		MaxAge:       86400, // 24 hours
	}))

	// Per-instance rate limiting per IP
	app.Use(limiter.New(limiter.Config{
		Max:        s.rateLimitPerMinute(),
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if prefix, ok := s.mediaPrefix(); ok {
		app.Static(prefix, s.config.MediaRoot, fiber.Static{
			MaxAge: 3600,
		})
	}

	api := app.Group("/api")

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// JSON mirror of the pages, limited across instances through Redis
	blog := api.Group("", middleware.RateLimit(s.redis, s.rateLimitPerMinute(), time.Minute, "api"))
	blog.Get("/index", s.GetIndex)
	blog.Get("/posts/:slug", s.GetPostDetail)
	blog.Get("/tags/:title", s.GetTagFilter)
	blog.Get("/archive/:year", s.GetArchive)

	// HTML pages
	app.Get("/", s.Index)
	app.Get("/posts/:slug", s.PostDetail)
	app.Get("/tags/:tag_title", s.TagFilter)
	app.Get("/contacts", s.Contacts)
}

// mediaPrefix returns the route prefix media files are served under.
// Absolute media URLs point at another host and are not served here.
func (s *Server) mediaPrefix() (string, bool) {
	if s.config == nil || s.config.MediaRoot == "" {
		return "", false
	}
	mediaURL := s.config.MediaURL
	if mediaURL == "" {
		mediaURL = service.DefaultMediaURL
	}
	if !strings.HasPrefix(mediaURL, "/") || strings.HasPrefix(mediaURL, "//") {
		return "", false
	}
	prefix := strings.TrimSuffix(mediaURL, "/")
	if prefix == "" {
		return "", false
	}
	return prefix, true
}

// ErrorHandler answers errors returned by handlers: JSON under /api, rendered
// 404 and 500 pages elsewhere.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}

	if isAPIRequest(c) {
		if fe != nil {
			return c.Status(status).JSON(models.ErrorResponse{
				Error: fe.Message,
				Code:  codeForStatus(status),
			})
		}
		return models.RespondWithError(c, status, err)
	}

	switch {
	case status == fiber.StatusNotFound:
		return s.renderPage(c, fiber.StatusNotFound, pageNotFound, nil)
	case status >= fiber.StatusInternalServerError:
		if rerr := s.renderPage(c, fiber.StatusInternalServerError, pageServerError, nil); rerr != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}
		return nil
	case fe != nil:
		return c.Status(status).SendString(fe.Message)
	default:
		return c.Status(status).SendString(utils.StatusMessage(status))
	}
}

// renderPage renders a page template with the given status and counts it.
func (s *Server) renderPage(c *fiber.Ctx, status int, name string, data interface{}) error {
	err := c.Status(status).Render(name, data)
	if err != nil {
		observability.PagesRendered.WithLabelValues(name, "error").Inc()
		return err
	}
	observability.PagesRendered.WithLabelValues(name, strconv.Itoa(status)).Inc()
	return nil
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   nowUTC(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := pingDB(ctx, s.db)
	readStatus := dbStatus
	if s.read != nil && s.read != s.db {
		readStatus = pingDB(ctx, s.read)
	}

	// Redis is optional: the site serves uncached pages without it.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || readStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database":         dbStatus,
			"database_replica": readStatus,
			"redis":            redisStatus,
		},
		"time": nowUTC(),
	})
}

func pingDB(ctx context.Context, db *gorm.DB) string {
	if db == nil {
		return "unavailable"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "unhealthy"
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	handles := &database.Handles{Write: s.db, Read: s.read}
	if err := handles.Close(); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
