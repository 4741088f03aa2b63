package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/waggy/go-wizard/pkg/renderers/tui"
	"github.com/waggy/go-wizard/pkg/wizard"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill in a wizard interactively in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		providerServiceID, _ := cmd.Flags().GetInt64("provider-service")
		if providerServiceID <= 0 {
			return errors.New("run: --provider-service is required")
		}
		logger := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		backend, err := newBackend(ctx, cmd, cfg, logger)
		if err != nil {
			return err
		}

		options := []tui.Option{
			tui.WithContext(localeContext(cfg)),
			tui.WithLogger(logger),
		}
		if plain, _ := cmd.Flags().GetBool("plain"); plain {
			options = append(options, tui.WithHelpRenderer(tui.PlainHelp))
		}

		ctlOptions, err := controllerOptions(cmd, cfg, logger)
		if err != nil {
			return err
		}
		ctl := wizard.New(backend, providerServiceID, ctlOptions...)
		err = tui.New(options...).Run(ctx, ctl)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, tui.ErrQuit), errors.Is(err, tui.ErrAborted):
			fmt.Fprintln(cmd.OutOrStdout(), "Saved steps are kept; run again to continue.")
			return nil
		default:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int64("provider-service", 0, "Provider service id to onboard")
	runCmd.Flags().Bool("plain", false, "Print help text without markdown styling")
}
