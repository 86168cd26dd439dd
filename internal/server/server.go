// Package server contains the HTTP handlers and routing for the DevHub API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "devhub/docs" // swagger docs
	"devhub/internal/auth"
	"devhub/internal/bootstrap"
	"devhub/internal/cache"
	"devhub/internal/config"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repository"
	"devhub/internal/service"
	"devhub/internal/storage"

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

// Per-route limits for the write endpoints that create accounts or content.
const (
	authRateLimit    = 10
	contentRateLimit = 30
	rateLimitWindow  = time.Minute
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	avatars        storage.AvatarStore
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	queryService   *service.QueryService
}

// NewServer connects to the database and Redis and builds a server on top of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case caching and token revocation are disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	avatars := storage.NewLocalAvatarStore(cfg.UploadDir, cfg.ImageMaxUploadSizeMB, cfg.AvatarMaxDimension)
	return newServer(cfg, db, redisClient, avatars), nil
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, avatars storage.AvatarStore) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)

	var (
		store   cache.Store         = cache.NoopStore{}
		revoked auth.RevocationList = auth.NoopRevocationList{}
	)
	if redisClient != nil {
		store = cache.NewRedisStore(redisClient, cfg.CachePrefix)
		revoked = auth.NewRedisRevocationList(redisClient)
	}
	coordinator := cache.NewCoordinator(store)
	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		avatars:        avatars,
		userService:    service.NewUserService(userRepo, auth.NewBcryptHasher(), tokens, revoked, avatars, coordinator),
		postService:    service.NewPostService(postRepo, coordinator),
		commentService: service.NewCommentService(commentRepo, coordinator),
		queryService:   service.NewQueryService(postRepo, userRepo, commentRepo, tagRepo, coordinator, cfg.PostsPageSize),
	}
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if s.config.ImageMaxUploadSizeMB > 0 {
		bodyLimit = (s.config.ImageMaxUploadSizeMB + 1) * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:   "DevHub API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Message: fiberErr.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Avatars are loaded cross-origin by the frontend.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "DevHub Metrics Dashboard",
	}))
	app.Get("/swagger/*", swagger.HandlerDefault)

	authed := s.AuthRequired()

	// Identity
	app.Post("/register", s.rateLimit(authRateLimit, "register"), s.Register)
	app.Post("/login", s.rateLimit(authRateLimit, "login"), s.Login)
	app.Post("/logout", authed, s.Logout)
	app.Get("/current_user", authed, s.CurrentUser)
	app.Put("/edit_profile", authed, s.EditProfile)
	app.Get("/uploads/:filename", s.ServeUpload)

	// Posts
	app.Post("/create_post", authed,
		s.rateLimit(contentRateLimit, "create_post"), s.CreatePost)
	app.Get("/get_post/:id", authed, s.GetPost)
	app.Get("/get_posts", s.GetPosts)
	app.Put("/edit_post/:id", authed, s.EditPost)
	app.Delete("/delete_post/:id", authed, s.DeletePost)
	app.Post("/like_post/:id", authed, s.LikePost)
	app.Get("/is_liked/:id", authed, s.IsLiked)
	app.Post("/bookmark_post/:id", authed, s.BookmarkPost)
	app.Get("/is_bookmarked/:id", authed, s.IsBookmarked)
	app.Get("/bookmarks", authed, s.Bookmarks)

	// Comments
	app.Post("/add_comment/:id", authed,
		s.rateLimit(contentRateLimit, "add_comment"), s.AddComment)
	app.Get("/get_comments/:id", s.GetComments)
	app.Post("/like_comment/:id", authed, s.LikeComment)
	app.Get("/is_comment_liked/:id", authed, s.IsCommentLiked)
	app.Delete("/delete_comment/:id", authed, s.DeleteComment)

	// Discovery
	app.Get("/search", s.Search)
	app.Get("/trending_stories", s.TrendingStories)
	app.Get("/get_tags", s.GetTags)
	app.Get("/recent_activities", authed, s.RecentActivities)
}

// rateLimit returns the per-route limiter for name, or a pass-through where
// the configured environment is not throttled.
func (s *Server) rateLimit(limit int, name string) fiber.Handler {
	if !middleware.RateLimitEnabled(s.config.Env) {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.redis, limit, rateLimitWindow, name)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports 503 when the database is unreachable or a configured Redis stops answering.
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

	// Without Redis the API still serves, uncached.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
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

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.userService.VerifyToken(c.UserContext(), tokenString)
		if err != nil {
			return respond(c, err)
		}
		userID, err := claims.UserID()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalUserID resolves the caller when a valid bearer token is present but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return 0, false
	}
	claims, err := s.userService.VerifyToken(c.UserContext(), tokenString)
	if err != nil {
		return 0, false
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// Start builds the app and listens on the configured port until Shutdown.
func (s *Server) Start() error {
	s.app = s.App()
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

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
