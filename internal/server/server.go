// Package server contains the HTTP handlers for the portfolio API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "portfolio/docs" // swagger docs
	"portfolio/internal/cache"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/featureflags"
	"portfolio/internal/mail"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/notifications"
	"portfolio/internal/policy"
	"portfolio/internal/repository"
	"portfolio/internal/revalidate"
	"portfolio/internal/service"
	"portfolio/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// viewTimeout bounds the detached view-count update.
const viewTimeout = 5 * time.Second

// Deps are the connections a Server is built on. Redis may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Store  storage.ObjectStore
	Mailer mail.Sender
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.ObjectStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	pages        *cache.PageCache
	notifier     *notifications.Notifier
	revalidator  revalidate.Trigger
	admin        *policy.AdminEmail
	tokens       *middleware.TokenManager
	featureFlags *featureflags.Manager

	postService    *service.PostService
	projectService *service.ProjectService
	likeService    *service.LikeService
	contactService *service.ContactService
	imageService   *service.ImageService
	authService    *service.AuthService

	// runAsync runs fire-and-forget work such as view counting.
	runAsync func(func())
}

// NewServer wires repositories and services over deps.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("server requires a database")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("server requires an object store")
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = mail.LogSender{}
	}

	pages := cache.NewPageCache(deps.Redis, cfg.PageCacheTTL())
	admin := policy.NewAdminEmail(cfg.AdminEmail)
	revalidator := revalidate.New(pages)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	postRepo := repository.NewPostRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	likeRepo := repository.NewLikeRepository(deps.DB)
	contactRepo := repository.NewContactRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)

	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL())

	s := &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		store:          deps.Store,
		promMiddleware: middleware.InitMetrics("portfolio-api"),
		pages:          pages,
		notifier:       notifications.NewNotifier(deps.Redis),
		revalidator:    revalidator,
		admin:          admin,
		tokens:         tokens,
		featureFlags:   flags,
		postService:    service.NewPostService(postRepo, deps.Store, admin, revalidator),
		projectService: service.NewProjectService(projectRepo, deps.Store, admin, revalidator),
		likeService:    service.NewLikeService(likeRepo, postRepo, flags),
		contactService: service.NewContactService(contactRepo, mailer, admin, cfg.MailFrom, mailTo(cfg)),
		imageService:   service.NewImageService(deps.Store, admin, cfg.MaxUploadBytes()),
		authService:    service.NewAuthService(userRepo, admin, tokens),
		runAsync:       func(f func()) { go f() },
	}
	return s, nil
}

// mailTo falls back to the admin address when MAIL_TO is unset.
func mailTo(cfg *config.Config) string {
	if cfg.MailTo != "" {
		return cfg.MailTo
	}
	return cfg.AdminEmail
}

// AuthService exposes the account service for bootstrap tasks.
func (s *Server) AuthService() *service.AuthService {
	return s.authService
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so that rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Visitor-ID",
		AllowCredentials: true,
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
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/me", s.tokens.AuthRequired(), s.Me)

	// Public content. Specific routes before /:id.
	posts := api.Group("/posts", s.tokens.OptionalAuth())
	posts.Get("/", s.ListPosts)
	posts.Get("/recent", s.RecentPosts)
	posts.Get("/slug/:slug", s.GetPostBySlug)
	posts.Get("/:id/like", s.GetLikeStatus)
	posts.Post("/:id/like", middleware.RateLimit(s.redis, 30, time.Minute, "like"), s.ToggleLike)

	projects := api.Group("/projects")
	projects.Get("/", s.ListProjects)
	projects.Get("/recent", s.RecentProjects)
	projects.Get("/slug/:slug", s.GetProjectBySlug)

	api.Post("/contact", middleware.RateLimit(s.redis, 5, 10*time.Minute, "contact"), s.CreateContact)

	// Admin. Authentication happens here, authorization in the services.
	admin := api.Group("/admin", s.tokens.AuthRequired())

	adminPosts := admin.Group("/posts")
	adminPosts.Get("/", s.AdminListPosts)
	adminPosts.Post("/", s.CreatePost)
	adminPosts.Post("/:id/publish", s.PublishPost)
	adminPosts.Post("/:id/archive", s.ArchivePost)
	adminPosts.Get("/:id", s.AdminGetPost)
	adminPosts.Patch("/:id", s.UpdatePost)

	adminProjects := admin.Group("/projects")
	adminProjects.Get("/", s.AdminListProjects)
	adminProjects.Post("/", s.CreateProject)
	adminProjects.Post("/:id/publish", s.PublishProject)
	adminProjects.Post("/:id/archive", s.ArchiveProject)
	adminProjects.Delete("/:id/images/:storageId", s.DeleteProjectImage)
	adminProjects.Get("/:id", s.AdminGetProject)
	adminProjects.Patch("/:id", s.UpdateProject)

	images := admin.Group("/images")
	images.Post("/upload-url", s.CreateUploadURL)
	images.Post("/", s.UploadImage)
	images.Delete("/:storageId", s.DeleteImage)

	contacts := admin.Group("/contacts")
	contacts.Get("/", s.AdminListContacts)
	contacts.Post("/:id/reply", s.ReplyContact)

	admin.Post("/revalidate", s.Revalidate)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "Portfolio API",
		BodyLimit: int(s.config.MaxUploadBytes()) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database, Redis and the object store. Redis is optional:
// without a client the cache is disabled and the service stays ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	storageStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storageStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" || storageStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  storageStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	// Log revalidations seen by this node; rendering nodes subscribe the same way.
	if err := s.notifier.StartRevalidateSubscriber(s.shutdownCtx, func(ev notifications.RevalidateEvent) {
		middleware.Logger.Debug("revalidate event", "path", ev.Path)
	}); err != nil {
		log.Printf("failed to start revalidate subscriber: %v", err)
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := database.Close(s.db); err != nil {
		log.Printf("error closing sql DB: %v", err)
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
