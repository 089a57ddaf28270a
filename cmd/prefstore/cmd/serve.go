package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prefstore/internal/app"
	internalhttp "github.com/jmylchreest/prefstore/internal/http"
	"github.com/jmylchreest/prefstore/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prefstore server",
	Long: `Start the prefstore HTTP server and API.

The server provides:
- REST API for reading and changing theme and preferences
- Server-sent change events at /api/v1/preferences/events
- Health check endpoints (/health, /livez, /readyz)
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("color-scheme", "auto", "OS color scheme source (auto, env, portal, terminal, file, none)")

	mustBindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	mustBindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	mustBindPFlag("color_scheme.source", serveCmd.Flags().Lookup("color-scheme"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	a, err := app.New(ctx, cfg, logger, app.Options{FollowColorScheme: true})
	if err != nil {
		return fmt.Errorf("starting preference store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer closeCancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Error("preference store shutdown failed", slog.String("error", err.Error()))
		}
	}()

	server := internalhttp.NewServer(cfg.Server, logger, version.Version)
	a.RegisterRoutes(server)

	logger.Info("starting prefstore server",
		append([]any{
			slog.String("host", cfg.Server.Host),
			slog.Int("port", cfg.Server.Port),
			slog.String("storage", a.Backend().Name()),
		}, version.LogAttrs()...)...,
	)

	return server.ListenAndServe(ctx)
}
