// Seeds the first admin account. Reads SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD
// from the environment and is safe to rerun: an existing account is left
// untouched.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/tilemart/tilemart-api/internal/application/auth"
	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/infrastructure/postgres"
	"github.com/tilemart/tilemart-api/pkg/config"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal().Msg("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	authUC := auth.New(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	user, err := authUC.CreateUser(auth.CreateUserInput{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     "admin",
	})
	switch {
	case err == nil:
		log.Info().Str("user_id", user.ID).Str("email", email).Msg("admin account created")
	case errors.Is(err, domain.ErrDuplicate):
		log.Info().Str("email", email).Msg("admin account already exists")
	default:
		log.Fatal().Err(err).Msg("create admin account")
	}
}
