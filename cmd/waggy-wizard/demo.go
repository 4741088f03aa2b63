package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/waggy/go-wizard/pkg/backend/memory"
	"github.com/waggy/go-wizard/pkg/model"
)

var demoCmd = &cobra.Command{
	Use:   "demo-backend",
	Short: "Serve an in-memory wizard API for local development",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		options := []memory.Option{memory.WithLogger(logger)}
		if cfg.Backend.Token != "" {
			options = append(options, memory.WithToken(cfg.Backend.Token))
		}
		if strict, _ := cmd.Flags().GetBool("server-validation"); strict {
			options = append(options, memory.WithServerValidation())
		}

		var backend *memory.Backend
		if path, _ := cmd.Flags().GetString("fixture"); path != "" {
			var definition model.Wizard
			definition, err = memory.LoadFixture(path)
			if err != nil {
				return err
			}
			backend, err = memory.New(definition, options...)
		} else {
			backend, err = memory.NewDefault(options...)
		}
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr, _ := cmd.Flags().GetString("listen")
		srv := &http.Server{
			Addr:              addr,
			Handler:           backend.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return listen(ctx, srv, logger.WithField("addr", addr))
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().String("listen", ":8081", "Listen address")
	demoCmd.Flags().String("fixture", "", "YAML wizard fixture (defaults to the dog walking wizard)")
	demoCmd.Flags().Bool("server-validation", false, "Reject saves that break field constraints with 422")
}
