// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	_ "pinmap/docs" // swagger docs
	"pinmap/internal/config"
	"pinmap/internal/middleware"
	"pinmap/internal/models"
	"pinmap/internal/notifications"
	"pinmap/internal/repository"
	"pinmap/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	notifier *notifications.Notifier
	hub      *notifications.Hub
	auth     *middleware.Auth
	verifier *middleware.TokenVerifier

	profiles  *service.ProfileService
	lists     *service.ListService
	pins      *service.PinService
	follows   *service.FollowService
	likes     *service.LikeService
	discovery *service.DiscoveryService
	feed      *service.FeedService
	avatars   *service.AvatarService
}

// Deps are the already-initialized dependencies of a Server. Redis may be nil:
// caching, Redis rate limiting and the activity stream are then disabled.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
}

// NewServerWithDeps wires repositories and services over deps.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	db := deps.DB
	profileRepo := repository.NewProfileRepository(db)
	listRepo := repository.NewListRepository(db)
	pinRepo := repository.NewPinRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	reg := deps.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "pinmap-api"
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          deps.Redis,
		promMiddleware: fiberprometheus.NewWithRegistry(reg, serviceName, "http", "", nil),
		notifier:       notifications.NewNotifier(deps.Redis),
		verifier:       middleware.NewTokenVerifier(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthAudience),
	}

	var publisher service.ActivityPublisher
	if deps.Redis != nil {
		publisher = s.notifier
		s.hub = notifications.NewHub()
	}

	s.profiles = service.NewProfileService(profileRepo)
	s.lists = service.NewListService(listRepo, profileRepo, followRepo, publisher)
	s.pins = service.NewPinService(pinRepo, listRepo, followRepo, publisher)
	s.follows = service.NewFollowService(followRepo, profileRepo, publisher)
	s.likes = service.NewLikeService(likeRepo, listRepo, pinRepo)
	s.discovery = service.NewDiscoveryService(pinRepo, cfg)
	s.feed = service.NewFeedService(listRepo, pinRepo, followRepo, profileRepo, cfg)
	s.avatars = service.NewAvatarService(profileRepo, cfg)
	s.auth = middleware.NewAuth(s.verifier, s.profiles)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New(helmet.Config{
		// avatars are embedded by the web client from another origin
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || c.Path() == "/metrics"
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static(service.MediaURLPrefix, s.avatars.MediaDir(), fiber.Static{
		MaxAge: 86400,
	})

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	required := s.auth.Required()
	optional := s.auth.Optional()

	users := api.Group("/users")
	users.Get("/me", required, s.GetMyProfile)
	users.Get("/me/flags", required, s.GetFeatureFlags)
	users.Put("/me", required, middleware.RateLimit(s.redis, 20, time.Minute, "profile_update"), s.UpdateMyProfile)
	users.Post("/me/avatar", required, middleware.RateLimit(s.redis, 5, 10*time.Minute, "avatar_upload"), s.UploadAvatar)
	users.Get("/search", optional, middleware.RateLimit(s.redis, 30, time.Minute, "user_search"), s.SearchUsers)
	// Specific /:id/:resource routes before the generic /:username route
	users.Get("/:id/lists", optional, s.GetUserLists)
	users.Get("/:id/followers", optional, s.GetFollowers)
	users.Get("/:id/following", optional, s.GetFollowing)
	users.Post("/:id/follow", required, middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.FollowUser)
	users.Delete("/:id/follow", required, s.UnfollowUser)
	users.Get("/:username", optional, s.GetUserProfile)

	lists := api.Group("/lists")
	lists.Post("/", required, middleware.RateLimit(s.redis, 20, time.Minute, "create_list"), s.CreateList)
	lists.Get("/liked", required, s.GetLikedLists)
	lists.Post("/:id/like", required, s.LikeList)
	lists.Delete("/:id/like", required, s.UnlikeList)
	lists.Post("/:id/pins", required, middleware.RateLimit(s.redis, 60, time.Minute, "save_pin"), s.SavePin)
	lists.Get("/:id", optional, s.GetList)
	lists.Put("/:id", required, s.UpdateList)
	lists.Delete("/:id", required, s.DeleteList)

	pins := api.Group("/pins")
	pins.Post("/:id/like", required, s.LikePin)
	pins.Delete("/:id/like", required, s.UnlikePin)
	pins.Get("/:id", optional, s.GetPin)
	pins.Put("/:id", required, s.UpdatePin)
	pins.Delete("/:id", required, s.DeletePin)

	spots := api.Group("/spots")
	spots.Get("/", optional, s.GetSpots)
	spots.Get("/trending", s.GetTrendingSpots)
	spots.Get("/heatmap", s.GetHeatmap)
	spots.Get("/:key/pins", optional, s.GetSpotPins)

	feed := api.Group("/feed", required)
	feed.Get("/", s.GetFeed)
	feed.Get("/following", s.GetFollowingGroups)

	api.Get("/ws", s.auth.WebSocket(), s.WebsocketHandler())
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	limitMB := s.config.AvatarMaxUploadMB
	if limitMB <= 0 {
		limitMB = service.DefaultAvatarMaxUploadMB
	}
	app := fiber.New(fiber.Config{
		AppName:   "pinmap API",
		BodyLimit: (limitMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start wires the activity stream and starts listening. It blocks until the
// listener stops.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start activity hub wiring: %v", err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
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

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down activity hub: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
