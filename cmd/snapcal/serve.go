package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/snapcal/internal/auth"
	"github.com/vbonduro/snapcal/internal/config"
	"github.com/vbonduro/snapcal/internal/db"
	"github.com/vbonduro/snapcal/internal/logging"
	"github.com/vbonduro/snapcal/internal/metrics"
	"github.com/vbonduro/snapcal/internal/service"
	"github.com/vbonduro/snapcal/internal/store"
	"github.com/vbonduro/snapcal/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.ListenAddr = addr
			}
			return serve(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	return cmd
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	m := metrics.New()
	scanner, err := newScanner(cfg, m, logger)
	if err != nil {
		return err
	}

	photoStg, err := newPhotoStore(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize photo store: %w", err)
	}

	scanService := service.NewScanService(scanner, store.NewScanStore(database), photoStg, logger)
	profileService := service.NewProfileService(store.NewProfileStore(database), logger)

	opts := web.Options{Metrics: m, ScanRatePerMinute: cfg.ScanRatePerMinute}
	if cfg.AuthJWTSecret != "" {
		opts.Verifier = auth.NewVerifier(cfg.AuthJWTSecret)
	} else {
		logger.Warn("AUTH_JWT_SECRET is not set; scan history and profiles are disabled")
	}

	server := web.NewServer(scanService, profileService, opts, logger)
	return server.ListenAndServe(cfg.ListenAddr)
}
