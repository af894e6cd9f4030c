package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/matprat/matprat/backend/config"
	"github.com/matprat/matprat/backend/internal/api"
	"github.com/matprat/matprat/backend/internal/database"
	"github.com/matprat/matprat/backend/internal/imagestore"
	"github.com/matprat/matprat/backend/internal/logging"
	"github.com/matprat/matprat/backend/internal/middleware"
	"github.com/matprat/matprat/backend/internal/server"
	"github.com/matprat/matprat/backend/internal/service"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	level := cfg.LogLevel
	if level == "" {
		level = logging.DefaultLevel(cfg.IsDevelopment())
	}
	log := logging.New(logging.Config{
		Level:     level,
		File:      cfg.LogFile,
		ErrorFile: cfg.LogErrorFile,
		JSON:      cfg.LogJSON,
	})
	log.WithField("env", cfg.Env).Info("Starting matprat")

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var rdb *redis.Client
	if database.RedisConfigured(cfg) {
		rdb, err = database.NewRedisClient(cfg)
		if err != nil {
			// Drafts, session revocation and shared rate limits are optional.
			log.WithField("error", err.Error()).Warn("Redis unavailable, continuing without it")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	deps, err := buildDeps(cfg, db, rdb, log)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received signal")
	}

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}
	log.Info("Server stopped")
}

func buildDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, log *logrus.Logger) (api.Deps, error) {
	store, err := imageStore(cfg)
	if err != nil {
		return api.Deps{}, err
	}

	auth := service.NewAuthService(db, cfg.SessionSecret, cfg.SessionTTL)
	deps := api.Deps{
		Recipes:      service.NewRecipeService(db, log),
		Auth:         auth,
		Images:       service.NewImageService(store, cfg.UploadMaxBytes, log),
		LoginLimiter: middleware.NewLoginLimiter(rdb),
		Log:          log,
	}
	if rdb != nil {
		auth.WithRevocationList(service.NewRedisRevocationList(rdb))
		deps.Drafts = service.NewRedisDraftStore(rdb)
	}
	return deps, nil
}

func imageStore(cfg *config.Config) (imagestore.Store, error) {
	if cfg.ImageStorage != "s3" {
		return imagestore.NewLocalStore(cfg.ImageDir, cfg.ImageURLPrefix), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return imagestore.NewS3Store(s3cfg.Client, s3cfg.BucketName, "images", s3cfg.PublicURL), nil
}
