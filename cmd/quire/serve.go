package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/quire/config"
	quirehttp "github.com/sagarc03/quire/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the quire HTTP server.

The metadata schema is validated on startup; run "quire init" first on a fresh
sqlite or postgres database, or pass --migrate.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (default: 5708, env: QUIRE_SERVER_PORT)")
	serveCmd.Flags().String("auth-mode", "", "bearer token verification: jwt, supabase, static (env: QUIRE_AUTH_MODE)")
	serveCmd.Flags().Bool("migrate", false, "create the metadata table before serving")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	if err = b.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err = b.db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migration complete")
	}

	if err = b.db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	service, err := b.service()
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	verifier, err := newVerifier(cfg, b.supabase)
	if err != nil {
		return err
	}

	handlerConfig := quirehttp.HandlerConfig{
		Verifier:        verifier,
		CORS:            cfg.CORS,
		MaxContentBytes: cfg.Server.MaxContentBytes,
	}
	if cfg.Metrics.Enabled {
		handlerConfig.Metrics = quirehttp.NewMetrics("quire")
		handlerConfig.MetricsPath = cfg.Metrics.Path
	}

	handler := quirehttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"database", cfg.Database.Type,
			"storage", cfg.Storage.Type,
			"auth", cfg.Auth.Mode,
			"metrics", cfg.Metrics.Enabled,
		)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
		return fmt.Errorf("shutdown: %w", err)
	}

	if serveErr, ok := <-errCh; ok && serveErr != nil {
		return fmt.Errorf("server error: %w", serveErr)
	}

	return nil
}
