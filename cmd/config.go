package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config <file>",
	Short: "Write the effective analysis parameters as YAML",
	Long: `Writes the analysis parameters in effect (defaults, ANALYSIS_CONFIG and --analysis
applied in that order) to a YAML file that can be edited and passed back with --analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Analysis.Save(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Analysis parameters written to %s\n", args[0])
		return nil
	},
}
