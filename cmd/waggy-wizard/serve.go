package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/waggy/go-wizard/pkg/metrics"
	"github.com/waggy/go-wizard/pkg/renderers/html"
	"github.com/waggy/go-wizard/pkg/server"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wizard as HTML pages",
	Long: `Starts the HTTP frontend. Each browser session gets its own controller and
unsaved input is kept as a draft in the configured session store.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := newBackend(ctx, cmd, cfg, logger)
		if err != nil {
			return err
		}
		store, closeStore, err := newStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.WithError(err).Warn("close session store")
			}
		}()

		renderer, err := html.New(html.WithThemeSelector(
			html.NewManifestSelector(html.DefaultManifest()),
			cfg.Theme.Name,
			cfg.Theme.Variant,
		))
		if err != nil {
			return err
		}

		ctlOptions, err := controllerOptions(cmd, cfg, logger)
		if err != nil {
			return err
		}

		options := []server.Option{
			server.WithLogger(logger),
			server.WithLocale(localeContext(cfg)),
			server.WithTheme(cfg.Theme.Name, cfg.Theme.Variant),
			server.WithCookie(server.DefaultCookieName, cfg.Server.SecureCookie),
			server.WithControllerOptions(ctlOptions...),
			server.WithIdleTimeout(cfg.Session.TTL),
		}
		if cfg.Server.Metrics {
			options = append(options, server.WithMetrics(metrics.New(true)))
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           server.New(backend, renderer, store, options...).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return listen(ctx, srv, logger.WithField("addr", cfg.Server.Addr))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	flags := serveCmd.Flags()
	flags.String("addr", "", "Listen address")
	flags.String("session", "", "Session store (memory, redis)")
	flags.String("theme", "", "Theme name")
	flags.String("variant", "", "Theme variant")
	flags.Bool("validate-contract", false, "Validate backend responses against the OpenAPI contract")
}

func listen(ctx context.Context, srv *http.Server, log logrus.FieldLogger) error {
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("wizard server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}
