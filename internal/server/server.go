// Package server contains the HTTP handlers for the blog API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/auth"
	"quill/internal/bootstrap"
	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"

	_ "quill/docs" // swagger docs

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	rateLimiter     *middleware.RateLimiter
	authService     *service.AuthService
	postService     *service.PostService
	commentService  *service.CommentService
	categoryService *service.CategoryService
}

// NewServer connects to the database and Redis and builds a Server over them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedCategories: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching and rate limiting are then skipped.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}
	store := cache.New(redisClient)

	userRepo := repository.NewUserRepository(db, store)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tokenRepo := repository.NewTokenRepository(db, store)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("quill-api"),
		rateLimiter:     middleware.NewRateLimiter(redisClient, cfg.Env),
		authService:     service.NewAuthService(userRepo, postRepo, tokenRepo, issuer),
		postService:     service.NewPostService(postRepo, categoryRepo, store),
		commentService:  service.NewCommentService(commentRepo, postRepo),
		categoryService: service.NewCategoryService(categoryRepo, store),
	}, nil
}

// NewApp returns a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Quill API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
		// Params and query values outlive the handler in spans and cache keys.
		Immutable: true,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler answers errors no handler turned into a response.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		slog.String("path", c.Path()), slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

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

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

// SetupRoutes configures all routes for the application. Trailing slashes
// are optional because routing is not strict.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Quill API Metrics",
	}))

	v1 := api.Group("/v1", s.Authenticate())

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", s.rateLimiter.Limit("register", 5, 10*time.Minute, middleware.FailOpen), s.Register)
	authRoutes.Post("/login", s.rateLimiter.Limit("login", 10, 5*time.Minute, middleware.FailOpen), s.Login)
	authRoutes.Post("/refresh", s.Refresh)
	authRoutes.Post("/logout", middleware.RequireAuth(), s.Logout)
	authRoutes.Get("/profile", middleware.RequireAuth(), s.GetProfile)
	authRoutes.Put("/profile", middleware.RequireAuth(), s.UpdateProfile)
	authRoutes.Patch("/profile", middleware.RequireAuth(), s.UpdateProfile)

	categories := v1.Group("/categories")
	categories.Get("/", s.ListCategories)
	categories.Get("/:slug", s.GetCategory)

	posts := v1.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.CreatePost)
	// Fixed segments must be registered before /:slug.
	posts.Get("/my-posts", s.ListMyPosts)
	posts.Get("/category/:slug", s.ListPostsByCategory)
	posts.Get("/author/:username", s.ListPostsByAuthor)

	comments := posts.Group("/:slug/comments")
	comments.Get("/", s.ListComments)
	comments.Post("/", s.CreateComment)
	comments.Get("/:id", s.GetComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Patch("/:id", s.PartialUpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	posts.Get("/:slug", s.GetPost)
	posts.Put("/:slug", s.UpdatePost)
	posts.Patch("/:slug", s.PartialUpdatePost)
	posts.Delete("/:slug", s.DeletePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: the API degrades to uncached reads without it.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Authenticate resolves a bearer token, when one is sent, into the request's
// requester. Requests without credentials continue as anonymous; requests
// with bad credentials are rejected.
func (s *Server) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := middleware.BearerToken(c)
		if errors.Is(err, middleware.ErrNoCredentials) {
			middleware.SetRequester(c, models.Anonymous())
			return c.Next()
		}
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(err.Error()))
		}

		requester, err := s.authService.Authenticate(c.UserContext(), raw)
		if err != nil {
			return s.fail(c, err)
		}
		middleware.SetRequester(c, requester)
		return c.Next()
	}
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if err := database.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
