package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bookhub/database"
	"bookhub/internal/cache"
	"bookhub/internal/config"
	"bookhub/internal/deepseek"
	"bookhub/internal/googleauth"
	"bookhub/internal/http-api/handler"
	"bookhub/internal/http-api/middleware"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/http-api/service"
	"bookhub/internal/mailer"
	"bookhub/internal/openlibrary"
	"bookhub/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database_connection_failed", "error", err.Error())
		os.Exit(1)
	}

	// Redis is optional: a missing REDIS_URL disables the search cache.
	redisAddr := strings.TrimPrefix(strings.TrimPrefix(cfg.RedisURL, "rediss://"), "redis://")
	resultCache, err := cache.New(redisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		logger.Warn("redis_unavailable_cache_disabled", "error", err.Error())
		resultCache, _ = cache.New("", "", 0)
	}
	defer resultCache.Close()

	// External clients
	olClient := openlibrary.NewClient(cfg.OpenLibraryURL, cfg.CoversURL, resultCache, logger)
	dsClient := deepseek.NewClient(cfg.DeepSeekAPIURL, cfg.DeepSeekAPIKey)
	googleClient := googleauth.NewClient(cfg.GoogleUserInfo)
	mail := mailer.New(cfg.BrevoAPIKey, cfg.BrevoSenderMail, cfg.AppURL, logger)
	storageClient := storage.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	bookRepo := repository.NewBookRepo(db)
	readingRepo := repository.NewReadingRepository(db)
	recRepo := repository.NewRecommendationRepository(db)
	followRepo := repository.NewFollowRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, refreshTokenRepo, googleClient, mail, cfg, logger)
	bookSvc := service.NewBookService(bookRepo, olClient, logger)
	readingSvc := service.NewReadingService(db, readingRepo, bookRepo, interactionRepo, activityRepo, logger)
	userSvc := service.NewUserService(db, userRepo, followRepo, readingRepo, interactionRepo, activityRepo, storageClient, logger)
	socialSvc := service.NewSocialService(readingRepo, interactionRepo, activityRepo, followRepo, logger)
	recSvc := service.NewRecommendationService(db, recRepo, readingRepo, bookRepo, dsClient, olClient, logger)

	router := setupRouter(cfg, authSvc, bookSvc, readingSvc, userSvc, socialSvc, recSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "port", cfg.HTTPPort, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown_failed", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("server_stopped_gracefully")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func setupRouter(
	cfg *config.Config,
	authSvc service.AuthService,
	bookSvc service.BookService,
	readingSvc service.ReadingService,
	userSvc service.UserService,
	socialSvc service.SocialService,
	recSvc service.RecommendationService,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "bookhub", "status": "running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	authRequired := middleware.AuthMiddleware(authSvc)

	handler.NewAuthHandler(authSvc).RegisterRoutes(api.Group("/auth"))
	handler.NewBookHandler(bookSvc).RegisterRoutes(api.Group("/books", authRequired))
	handler.NewReadingHandler(readingSvc).RegisterRoutes(api.Group("/readings", authRequired))
	handler.NewRecommendationHandler(recSvc).RegisterRoutes(api.Group("/recommendations", authRequired))
	handler.NewSocialHandler(socialSvc, userSvc).RegisterRoutes(api.Group("/social", authRequired))
	handler.NewUserHandler(userSvc).RegisterRoutes(api.Group("/users", authRequired))
	handler.NewDashboardHandler(readingSvc, authSvc).RegisterRoutes(api.Group("/dashboard", authRequired))

	return router
}
