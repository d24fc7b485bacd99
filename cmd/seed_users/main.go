// Command seed_users creates demo accounts for local development. Accounts
// that already exist are left alone.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/service"
)

const demoPassword = "testpassword123"

var demoUsers = []service.RegisterInput{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Env == config.Production {
		log.Fatal().Msg("refusing to seed demo users in production")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	ctx := log.Logger.WithContext(context.Background())
	for _, in := range demoUsers {
		in.Password = demoPassword
		user, err := auth.Register(ctx, in)
		switch {
		case errors.Is(err, service.ErrConflict):
			log.Info().Str("email", in.Email).Msg("user already exists, skipping")
		case err != nil:
			log.Fatal().Err(err).Str("email", in.Email).Msg("failed to create user")
		default:
			log.Info().Uint("id", user.ID).Str("email", user.Email).Msg("created demo user")
		}
	}
	log.Info().Str("password", demoPassword).Msg("demo users ready")
}
