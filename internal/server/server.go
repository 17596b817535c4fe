// Package server exposes the analysis engine over HTTP.
package server

import (
	"context"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/history"
	"github.com/farcloser/tactus/internal/integration/ffmpeg"
	"github.com/farcloser/tactus/internal/types"
)

// Transcoder converts an uploaded recording of any container to raw PCM in format.
type Transcoder func(ctx context.Context, input io.Reader, output io.Writer, format types.PCMFormat) error

// Server is the HTTP front of the engine.
type Server struct {
	app       *fiber.App
	cfg       Config
	opts      tactus.Options
	transcode Transcoder
	store     *history.Store
}

// Option customizes a Server.
type Option func(*Server)

// WithTranscoder replaces ffmpeg.
func WithTranscoder(t Transcoder) Option {
	return func(s *Server) { s.transcode = t }
}

// WithHistory stores every successful analysis in store.
func WithHistory(store *history.Store) Option {
	return func(s *Server) { s.store = store }
}

// New creates the server and registers its routes.
func New(cfg Config, options ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		opts:      tactus.OptionsForProfile(cfg.Profile),
		transcode: ffmpeg.Transcode,
	}

	for _, opt := range options {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "tactus",
		DisableStartupMessage: true,
		// Oversized uploads are answered by the handler with an error envelope.
		BodyLimit: int(cfg.MaxUploadBytes) + 1024*1024,
	})

	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowedOrigins != "*",
	}))

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Post("/analyze", s.handleAnalyze)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until ctx is done, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		if err := s.app.Shutdown(); err != nil {
			slog.Warn("shutdown failed", "error", err)
		}
	}()

	slog.Info("listening", "addr", s.cfg.Addr, "profile", s.cfg.Profile.String())

	return s.app.Listen(s.cfg.Addr)
}
