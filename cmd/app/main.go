package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wichananm65/account-service/internal/config"
	"github.com/wichananm65/account-service/internal/database"
	"github.com/wichananm65/account-service/internal/logger"
	"github.com/wichananm65/account-service/internal/password"
	"github.com/wichananm65/account-service/internal/server"
	"github.com/wichananm65/account-service/internal/storage"
	"github.com/wichananm65/account-service/internal/token"
	"github.com/wichananm65/account-service/internal/user"
)

const (
	serviceName     = "account-service"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(serviceName, false)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(serviceName, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeDB := mustOpenRepository(ctx, cfg.Database)
	defer closeDB()

	files, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to set up file storage")
	}

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := user.NewService(repo, password.NewHasher(cfg.Auth.BcryptCost), tokens, files)
	ensureAdmin(ctx, userService, cfg.Admin)

	app := server.New(cfg, user.NewHandler(userService), tokens)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.Server.Addr).
		Str("storage", cfg.Storage.Driver).
		Dur("token_ttl", tokens.TTL()).
		Msg("starting server")
	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}

// mustOpenRepository returns the Postgres store when DATABASE_URL is set and
// an in-memory store otherwise.
func mustOpenRepository(ctx context.Context, cfg config.Database) (user.Repository, func()) {
	if cfg.URL == "" {
		log.Warn().Msg("DATABASE_URL is not set, accounts are kept in memory")
		return user.NewInMemoryRepository(nil), func() {}
	}

	db, err := database.Open(ctx, cfg.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			closeQuietly(db)
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}
	return user.NewPostgresRepository(db), func() { closeQuietly(db) }
}

func ensureAdmin(ctx context.Context, svc *user.Service, cfg config.Admin) {
	if cfg.Email == "" {
		return
	}
	admin, created, err := svc.EnsureAdmin(ctx, user.RegisterInput{
		FirstName: cfg.FirstName,
		LastName:  cfg.LastName,
		Email:     cfg.Email,
		Password:  cfg.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Str("email", cfg.Email).Msg("failed to seed admin account")
	}
	if created {
		log.Info().Int("user_id", admin.ID).Str("email", admin.Email).Msg("admin account created")
	}
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}
