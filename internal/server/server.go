// Package server assembles the fiber application.
package server

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"github.com/wichananm65/account-service/internal/apperror"
	"github.com/wichananm65/account-service/internal/config"
	"github.com/wichananm65/account-service/internal/metrics"
	"github.com/wichananm65/account-service/internal/middleware"
	"github.com/wichananm65/account-service/internal/token"
	"github.com/wichananm65/account-service/internal/user"
)

const appName = "account-service"

// New wires middleware and routes. Routes registered before the guard are
// public; everything after it needs a bearer token.
func New(cfg *config.Config, handler *user.Handler, tokens *token.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		BodyLimit:             cfg.Server.BodyLimit(),
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Debug}))
	setupCORS(app, cfg.Server.CORSOrigins)
	app.Use(middleware.RequestLogger())
	if cfg.Server.Metrics {
		m := metrics.New()
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	handler.RegisterPublicRoutes(app)
	if cfg.Storage.Driver == config.StorageLocal {
		app.Static(staticPrefix(cfg.Storage.UploadDir), cfg.Storage.UploadDir)
	}

	app.Use(middleware.Protect(tokens))
	handler.RegisterProtectedRoutes(app)

	return app
}

// staticPrefix mounts uploads at the same path LocalStore reports, so a
// stored filePath is also its URL.
func staticPrefix(dir string) string {
	return "/" + strings.TrimLeft(filepath.ToSlash(filepath.Clean(dir)), "/")
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// errorHandler answers framework errors and panics as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	kind := apperror.KindOf(err)
	if kind == apperror.Internal {
		log.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")
	}
	return c.Status(apperror.Status(kind)).JSON(fiber.Map{"message": apperror.Message(err)})
}
