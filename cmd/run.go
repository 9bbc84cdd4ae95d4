package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape, save the raw CSV, then analyse it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyScrapeFlags(cmd)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		logger.Info("=== Vehicle market pipeline starting ===")
		raw, err := scrape(ctx)
		if err != nil {
			return err
		}
		return analyze(raw)
	},
}
