// Package server contains the HTTP handlers and page templates of the site.
package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/middleware"
	"yatube/internal/repository"
	"yatube/internal/service"
	"yatube/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

//go:embed views
var viewsFS embed.FS

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	blobs          *storage.BlobStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *middleware.SessionManager
	feedService    *service.FeedService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	profileService *service.ProfileService
	userService    *service.UserService
	groupService   *service.GroupService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	blobs, err := storage.NewDiskBlobStore(cfg.MediaRoot)
	if err != nil {
		return nil, fmt.Errorf("media root: %w", err)
	}

	// Redis is optional; without it page snapshots stay in process memory.
	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient, blobs)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobs *storage.BlobStore) (*Server, error) {
	if blobs == nil {
		blobs = storage.NewMemBlobStore()
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	images := service.NewImageService(blobs, cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		blobs:          blobs,
		promMiddleware: middleware.InitMetrics("yatube"),
		sessions:       middleware.NewSessionManager(cfg),
		feedService:    service.NewFeedService(postRepo, groupRepo, userRepo, cfg.PageSize),
		postService:    service.NewPostService(repository.NewTxManager(db), postRepo, groupRepo, userRepo, images),
		commentService: service.NewCommentService(commentRepo, postRepo, userRepo),
		followService:  service.NewFollowService(followRepo, userRepo),
		profileService: service.NewProfileService(postRepo, followRepo, userRepo),
		userService:    service.NewUserService(userRepo),
		groupService:   service.NewGroupService(groupRepo),
	}
	return s, nil
}

// App builds the Fiber application with views, middleware and routes.
func (s *Server) App() (*fiber.App, error) {
	engine, err := s.newViewEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "yatube",
		Views:        engine,
		ViewsLayout:  "layouts/main",
		BodyLimit:    int(s.config.ImageMaxUploadBytes()) + 1024*1024,
		ErrorHandler: s.ErrorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app, nil
}

func (s *Server) newViewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	mediaURL := s.config.MediaURL
	engine.AddFunc("media", func(path string) string {
		return mediaURL + strings.TrimPrefix(path, "/")
	})
	engine.AddFunc("loginURL", middleware.LoginURL)
	return engine, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Resolve the caller from the session cookie before anything reads it.
	app.Use(s.sessions.Identify(s.userService))

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	app.Use(compress.New())
}

// SetupRoutes configures all routes for the application. Fixed paths are
// registered before the "/:username" catch-all.
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Use(strings.TrimSuffix(s.config.MediaURL, "/"), filesystem.New(filesystem.Config{
		Root:   s.blobs.HTTPFileSystem(),
		MaxAge: int((24 * time.Hour).Seconds()),
	}))

	app.Get("/",
		middleware.PageCacheMetrics(),
		cache.PageCache(s.redis, s.config.PageCacheTTL()),
		s.Index,
	)
	app.Get("/group/:slug", s.GroupPosts)
	app.Get("/new", middleware.LoginRequired, s.NewPostForm)
	app.Post("/new", middleware.LoginRequired, s.CreatePost)
	app.Get("/follow", middleware.LoginRequired, s.FollowIndex)

	authLimit := s.config.AuthRateLimit
	auth := app.Group("/auth")
	auth.Get("/signup", s.SignupForm)
	auth.Post("/signup", middleware.RateLimit(s.redis, "signup", authLimit, time.Minute, middleware.FailOpen), s.Signup)
	auth.Get("/login", s.LoginForm)
	auth.Post("/login", middleware.RateLimit(s.redis, "login", authLimit, time.Minute, middleware.FailOpen), s.Login)
	auth.Get("/logout", s.Logout)
	auth.Post("/logout", s.Logout)

	// Define specific /:username/:action routes BEFORE /:username/:post_id
	app.Get("/:username", s.Profile)
	app.Get("/:username/follow", middleware.LoginRequired, s.ProfileFollow)
	app.Get("/:username/unfollow", middleware.LoginRequired, s.ProfileUnfollow)
	app.Get("/:username/:post_id", s.PostView)
	app.Get("/:username/:post_id/edit", middleware.LoginRequired, s.EditPostForm)
	app.Post("/:username/:post_id/edit", middleware.LoginRequired, s.EditPost)
	app.Post("/:username/:post_id/comment", middleware.LoginRequired, s.AddComment)
}

// Start starts the server
func (s *Server) Start() error {
	app, err := s.App()
	if err != nil {
		return err
	}
	s.app = app

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
