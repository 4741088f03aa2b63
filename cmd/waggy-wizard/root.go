package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waggy-wizard",
	Short: "Waggy provider onboarding wizard",
	Long: `waggy-wizard renders the provider onboarding wizard described by the
Waggy backend, either as HTML pages (serve) or in the terminal (run).`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("backend-url", "", "Wizard API base URL")
	flags.String("token", "", "Bearer token for the wizard API")
	flags.String("locale", "", "Display locale (en, ar)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	flags.Bool("demo", false, "Use the in-process demo backend instead of the wizard API")
	flags.String("overlays", "", "Directory of YAML/JSON step overlays")
}
