// SPDX-License-Identifier: EPL-2.0

// Package server exposes the compressor over HTTP: an audio file is
// uploaded as multipart form data and the MP3 comes back as a download.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/muhammadfauzanis/compressing-image-audio/encoder"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/config"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/observe"
)

// Routes
const (
	CompressPath = "/api/audio/compress"
	HealthPath   = "/healthz"
	MetricsPath  = "/metrics"
)

// FormField is the multipart field holding the upload.
const FormField = "audio"

// Response headers describing the encoded stream.
const (
	HeaderFrames     = "X-Audio-Frames"
	HeaderDurationMs = "X-Audio-Duration-Ms"
)

type Server struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *observe.Metrics
	scrape  http.Handler
	factory encoder.Factory
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetrics records into m. Without it the global meter provider is used.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMetricsHandler mounts h on /metrics. Without it the route is absent.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.scrape = h }
}

// WithEncoderFactory replaces the MP3 backend.
func WithEncoderFactory(f encoder.Factory) Option {
	return func(s *Server) { s.factory = f }
}

func New(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	return s
}

// Handler returns the routed handler wrapped in the observe middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+CompressPath, s.handleCompress)
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	if s.scrape != nil {
		mux.Handle("GET "+MetricsPath, s.scrape)
	}

	return observe.Middleware(s.metrics, s.log)(mux)
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.ListenAddr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener, which it closes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
