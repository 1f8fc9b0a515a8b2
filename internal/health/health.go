// Package health serves the liveness endpoint polled by the hosting platform.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	DefaultAddr = ":8080"
	aliveBody   = "I'm alive!"

	shutdownTimeout = 5 * time.Second
)

type Server struct {
	app    *fiber.App
	addr   string
	logger *zap.Logger
}

func New(addr string, logger *zap.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(aliveBody)
	})

	return &Server{app: app, addr: addr, logger: logger}
}

// Handler exposes the fiber app, mostly for tests.
func (s *Server) Handler() *fiber.App {
	return s.app
}

// Run listens until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("liveness endpoint listening", zap.String("addr", s.addr))
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving liveness endpoint: %w", err)
	case <-ctx.Done():
	}

	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutting down liveness endpoint: %w", err)
	}

	if err := <-errCh; err != nil {
		s.logger.Debug("listener returned after shutdown", zap.Error(err))
	}

	return nil
}
