package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/api"
	"github.com/parkfind/backend/internal/auth"
	"github.com/parkfind/backend/internal/config"
	"github.com/parkfind/backend/internal/dispatch"
	"github.com/parkfind/backend/internal/domain"
	"github.com/parkfind/backend/internal/event"
	"github.com/parkfind/backend/internal/fcm"
	"github.com/parkfind/backend/internal/push"
	"github.com/parkfind/backend/internal/repository"
	"github.com/parkfind/backend/internal/ws"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Starting ParkFind API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()
	db, err := initDatabase(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database")

	// Event bus and repository; the repository drains deferred events into
	// the bus after each commit.
	bus := event.NewBus(logger)
	repo := repository.NewPostgresRepository(db, bus)
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Delivery channels
	if !cfg.VAPID.Configured() {
		logger.Warn("VAPID keys not configured - web push deliveries will be skipped")
	}

	fcmClient, err := fcm.NewClient(ctx, logger, cfg.FCM.CredentialsFile)
	if err != nil {
		logger.Warn("Failed to initialize Firebase client - native push will be disabled", zap.Error(err))
	} else {
		logger.Info("Firebase client initialized")
	}

	wsManager := ws.NewManager(logger)
	go wsManager.Run()

	channels := []push.Channel{
		push.NewWebPushChannel(repo, cfg.VAPID, logger),
	}
	if fcmClient != nil {
		channels = append(channels, push.NewFCMChannel(repo, fcmClient, logger))
	}
	channels = append(channels, wsManager)

	// Services
	notificationService := domain.NewNotificationService(repo)
	followService := domain.NewFollowService(repo, repo, bus)
	commentService := domain.NewCommentService(repo, repo, bus)
	discoveryService := domain.NewDiscoveryService(repo, repo, bus)

	// The dispatcher listens for committed domain events and drives the
	// notification pipeline.
	dispatcher := dispatch.NewDispatcher(notificationService, repo, repo, repo, channels, logger)
	dispatcher.Register(bus)

	// Handlers
	authHandler := api.NewAuthHandler(repo, jwtManager, logger)
	followHandler := api.NewFollowHandler(followService, logger)
	commentHandler := api.NewCommentHandler(commentService, logger)
	discoveryHandler := api.NewDiscoveryHandler(discoveryService, logger)
	notificationHandler := api.NewNotificationHandler(notificationService, logger)
	pushHandler := api.NewPushHandler(repo, cfg.VAPID, logger)
	wsHandler := api.NewWSHandler(wsManager, logger)
	healthHandler := api.NewHealthHandler()

	router := api.NewRouter(
		authHandler,
		followHandler,
		commentHandler,
		discoveryHandler,
		notificationHandler,
		pushHandler,
		wsHandler,
		healthHandler,
		jwtManager,
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func initLogger() (*zap.Logger, error) {
	if os.Getenv("ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func initDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
