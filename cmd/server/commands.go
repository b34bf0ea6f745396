package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pricofy/translate-gateway/internal/app"
	"github.com/pricofy/translate-gateway/internal/config"
	"github.com/pricofy/translate-gateway/internal/logging"
)

// newRootCmd creates the root command for translate-gateway.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "translate-gateway",
		Short: "Authenticated, cache-first translation API",
		Long: `An HTTP service that translates batches of texts into a target language.

Translations are served from a shared cache when possible; misses go to the
configured provider and are written back for later requests.

Example:
  SECRET_API_KEY=secret translate-gateway serve --port 5000`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newVersionCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return fmt.Errorf("failed to get env-file flag: %w", err)
			}
			v := viper.New()
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v, envFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides PORT)")
	cmd.Flags().StringP("log-level", "l", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.Flags().String("env-file", ".env", "Optional .env file to read before the environment")

	return cmd
}

// bindFlags maps explicitly set flags onto their environment keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"port":      "PORT",
		"log-level": "LOG_LEVEL",
	}
	for flag, key := range bindings {
		if !flags.Changed(flag) {
			continue
		}
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind %s flag: %w", flag, err)
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// serve runs the HTTP server until SIGINT or SIGTERM, then shuts down gracefully.
func serve(parent context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Provider.Timeout*time.Duration(cfg.Provider.MaxAttempts) + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			_ = a.Close(context.Background())
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		logger.Warn("Failed to close cache store", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}
