package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Redis only backs rate limiting; without it each instance limits locally.
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-process rate limiting")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.MediaBackend).Msg("failed to initialize media storage")
	}

	var limiter middleware.Limiter
	if cfg.RecipeCreateLimit > 0 {
		limiter = middleware.NewRecipeCreationLimiter(redisClient, cfg.RecipeCreateLimit)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	services := api.NewServices(db, authService, media.NewStore(blobs), limiter)

	srv := server.New(cfg, db, services)
	log.Info().Str("addr", cfg.Addr()).Str("env", string(cfg.Env)).Msg("starting server")
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.Env == config.Development {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	log.Logger = log.With().Str("service", "foodgram-api").Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

func newBlobStore(ctx context.Context, cfg *config.Config) (media.BlobStore, error) {
	if cfg.MediaBackend == config.MediaS3 {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return media.NewS3Store(s3cfg), nil
	}
	return media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
}
