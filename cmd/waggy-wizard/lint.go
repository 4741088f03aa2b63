package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/waggy/go-wizard/pkg/validation"
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Check wizard definitions for descriptor problems",
	Long: `Decodes YAML or JSON wizard definitions and reports duplicate keys, unknown
field types, broken dependencies and other descriptor issues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("lint %s: %w", path, err)
			}
			result := validation.LintWizard(raw, validation.FormatFromPath(path))
			if result.Valid {
				fmt.Fprintf(out, "%s: ok\n", path)
				continue
			}
			failed++
			for _, issue := range result.Issues {
				location := issue.Path
				if location == "" {
					location = "-"
				}
				fmt.Fprintf(out, "%s: %s -> %s\n", path, location, issue.Message)
			}
		}
		if failed > 0 {
			return fmt.Errorf("lint: %d of %d definitions have issues", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
