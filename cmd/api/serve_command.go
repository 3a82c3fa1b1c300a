package main

import (
	"context"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	handlers "soundblast/internal/http/handler"
	"soundblast/internal/http/middleware"
	"soundblast/internal/otel"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger

			shutdownTracing, err := otel.Init(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					logger.Warn().Err(err).Msg("tracer shutdown failed")
				}
			}()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			svc, err := ctx.buildServices(cmd.Context(), reg)
			if err != nil {
				return err
			}
			defer svc.close()

			if err := svc.tools.Preflight(); err != nil {
				// Transcription requests fail until the tools resolve; /health reports it.
				logger.Warn().Err(err).Msg("external tools unavailable")
			}

			promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
			if err != nil {
				return err
			}

			app := fiber.New(fiber.Config{
				ErrorHandler:          handlers.ErrorHandler(),
				BodyLimit:             cfg.MaxUploadBytes,
				StreamRequestBody:     true,
				DisableStartupMessage: true,
			})

			app.Use(middleware.RequestID())
			app.Use(otelfiber.Middleware())
			app.Use(middleware.Logger(logger, time.UTC))
			app.Use(promMiddleware.Handler())
			app.Use(cors.New(cors.Config{
				AllowOrigins:     cfg.CORSAllowOrigins,
				AllowCredentials: true,
				AllowHeaders:     "Content-Type, " + middleware.RequestIDHeader,
			}))

			handlers.RegisterRoutes(app, handlers.Dependencies{
				DB:            svc.db,
				Files:         svc.files,
				Transcription: svc.transcriber,
				ToolCheck:     svc.tools.Preflight,
				Gatherer:      reg,
			})

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", ":"+cfg.Port).Str("storage", cfg.Storage.Backend).Msg("server listening")
				errCh <- app.Listen(":" + cfg.Port)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			logger.Info().Msg("shutting down")
			if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown failed")
				return err
			}
			return nil
		},
	}
}
