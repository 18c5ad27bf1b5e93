package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ask-relay",
		Short:        "Relay questions and product lookups to the AI service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			setupLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	registerFlags(cmd.Flags())
	return cmd
}

func newApp(cfg config) *fiber.App {
	up := newUpstream(cfg.AIServiceURL, cfg.UpstreamTimeout)
	busy := &busyFlag{}

	app := fiber.New(fiber.Config{
		AppName:               "ask-relay",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(requestIDMiddleware, loggerMiddleware)

	app.Get("/health", handleHealth(up))

	api := app.Group("/api")
	api.Post("/ask", handleAsk(up, busy))
	api.Post("/product", handleProduct(up))

	app.Use("/ws", upgradeMiddleware)
	app.Get("/ws/ask", handleStream(up, busy))

	return app
}

func serve(ctx context.Context, cfg config) error {
	app := newApp(cfg)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("ai_service_url", cfg.AIServiceURL).
			Dur("upstream_timeout", cfg.UpstreamTimeout).
			Msg("Listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		return app.Shutdown()
	}
}
