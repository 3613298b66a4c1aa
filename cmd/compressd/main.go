// SPDX-License-Identifier: EPL-2.0

// Command compressd serves the audio compressor over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/muhammadfauzanis/compressing-image-audio/internal/config"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/logging"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/observe"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file; empty uses the defaults")
	listenAddr := flag.String("listen", "", "override server.listen_addr")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "compressd: %v\n", err)
			return 1
		}
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compressd: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "compressd",
		ServiceVersion: version,
		Global:         true,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise metrics")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics shutdown")
		}
	}()

	metrics, err := observe.NewMetrics(provider.MeterProvider)
	if err != nil {
		log.Error().Err(err).Msg("failed to create metrics")
		return 1
	}

	log.Info().
		Str("version", version).
		Str("config", *configPath).
		Str("listen_addr", cfg.Server.ListenAddr).
		Int("context_sample_rate", cfg.Audio.ContextSampleRate).
		Int64("max_upload_bytes", cfg.Server.MaxUploadBytes).
		Msg("compressd starting")

	srv := server.New(cfg,
		server.WithLogger(log),
		server.WithMetrics(metrics),
		server.WithMetricsHandler(provider.Handler()),
	)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("server error")
		return 1
	}

	log.Info().Msg("goodbye")
	return 0
}
