package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/config"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/middleware"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/routes"
)

// multipart framing on top of the largest accepted upload
const bodyLimitSlack = 64 << 10

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app    *fiber.App
	cfg    config.Config
	logger *slog.Logger
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(deps routes.Deps) (*Server, error) {
	cfg := deps.Cfg
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             cfg.MaxUploadBytes + bodyLimitSlack,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(deps.Logger),
	})

	if err := routes.Setup(app, deps); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, logger: deps.Logger}, nil
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	s.logger.Info("listening", slog.String("addr", s.cfg.Address()), slog.String("env", s.cfg.AppEnv))
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
