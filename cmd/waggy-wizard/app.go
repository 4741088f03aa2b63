package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/waggy/go-wizard/internal/config"
	"github.com/waggy/go-wizard/internal/logging"
	"github.com/waggy/go-wizard/pkg/backend/memory"
	"github.com/waggy/go-wizard/pkg/client"
	"github.com/waggy/go-wizard/pkg/render"
	"github.com/waggy/go-wizard/pkg/session"
	sessionmemory "github.com/waggy/go-wizard/pkg/session/memory"
	sessionredis "github.com/waggy/go-wizard/pkg/session/redis"
	"github.com/waggy/go-wizard/pkg/uischema"
	"github.com/waggy/go-wizard/pkg/validation"
	"github.com/waggy/go-wizard/pkg/wizard"
)

const serviceName = "waggy-wizard"

// loadConfig reads the config file and environment, then applies any flag
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	overrides := map[string]*string{
		"backend-url": &cfg.Backend.BaseURL,
		"token":       &cfg.Backend.Token,
		"locale":      &cfg.Locale.Default,
		"log-level":   &cfg.Log.Level,
		"log-format":  &cfg.Log.Format,
		"addr":        &cfg.Server.Addr,
		"session":     &cfg.Session.Store,
		"theme":       &cfg.Theme.Name,
		"variant":     &cfg.Theme.Variant,
		"overlays":    &cfg.UI.Overlays,
	}
	for name, target := range overrides {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		*target = flag.Value.String()
	}
	if flag := cmd.Flags().Lookup("validate-contract"); flag != nil && flag.Changed {
		cfg.Backend.ValidateContract, _ = cmd.Flags().GetBool("validate-contract")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *logrus.Logger {
	return logging.New(serviceName, cfg.Log.Level, cfg.Log.Format)
}

func localeContext(cfg config.Config) render.Context {
	return render.Context{Locale: cfg.Locale.Default, FallbackLocale: cfg.Locale.Fallback}
}

// newBackend returns the demo backend with --demo, otherwise the HTTP
// client for the configured API.
func newBackend(ctx context.Context, cmd *cobra.Command, cfg config.Config, logger logrus.FieldLogger) (wizard.Backend, error) {
	if demo, _ := cmd.Flags().GetBool("demo"); demo {
		backend, err := memory.NewDefault(memory.WithLogger(logger), memory.WithServerValidation())
		if err != nil {
			return nil, fmt.Errorf("demo backend: %w", err)
		}
		return backend, nil
	}

	options := []client.Option{
		client.WithToken(cfg.Backend.Token),
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithUserAgent(serviceName),
		client.WithLogger(logger),
	}
	if cfg.Backend.ValidateContract {
		contract, err := client.DefaultContract(ctx)
		if err != nil {
			return nil, err
		}
		options = append(options, client.WithContract(contract))
	}
	return client.New(cfg.Backend.BaseURL, options...)
}

// newStore returns the configured draft store and a close function.
func newStore(ctx context.Context, cfg config.Config) (session.Store, func() error, error) {
	if cfg.Session.Store != config.StoreRedis {
		return sessionmemory.NewStore(), func() error { return nil }, nil
	}
	options := []sessionredis.Option{sessionredis.WithTTL(cfg.Session.TTL)}
	if cfg.Session.Prefix != "" {
		options = append(options, sessionredis.WithPrefix(cfg.Session.Prefix))
	}
	store := sessionredis.New(cfg.Session.Redis.Addr, cfg.Session.Redis.Password, cfg.Session.Redis.DB, options...)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("session store: %w", err)
	}
	return store, store.Close, nil
}

// controllerOptions enables constraint validation and, when configured, the
// UI overlays. The demo backend gets the bundled overlays by default.
func controllerOptions(cmd *cobra.Command, cfg config.Config, logger logrus.FieldLogger) ([]wizard.Option, error) {
	options := []wizard.Option{
		wizard.WithLogger(logger),
		wizard.WithValidator(validation.New(validation.WithConstraints())),
	}

	var overlays fs.FS
	if cfg.UI.Overlays != "" {
		overlays = os.DirFS(cfg.UI.Overlays)
	} else if demo, _ := cmd.Flags().GetBool("demo"); demo {
		overlays = uischema.EmbeddedFS()
	}
	if overlays == nil {
		return options, nil
	}
	store, err := uischema.LoadFS(overlays)
	if err != nil {
		return nil, err
	}
	return append(options, wizard.WithDecorators(uischema.NewDecorator(store))), nil
}
