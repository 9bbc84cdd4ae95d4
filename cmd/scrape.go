package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"vehicle-insights/models"
	"vehicle-insights/scraper/webmotors"
	"vehicle-insights/storage"
)

var (
	scrOutput    string
	scrMaxPages  int
	scrTransport string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect listings from the search API into the raw CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyScrapeFlags(cmd)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		_, err := scrape(ctx)
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{scrapeCmd, runCmd} {
		c.Flags().StringVarP(&scrOutput, "out", "o", "", "raw CSV output path (overrides RAW_CSV_PATH)")
		c.Flags().IntVar(&scrMaxPages, "max-pages", 0, "stop after this many pages (0 = until an empty page)")
		c.Flags().StringVar(&scrTransport, "transport", "", "http or browser (overrides SCRAPE_TRANSPORT)")
	}
}

func applyScrapeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("out") && scrOutput != "" {
		cfg.RawCSVPath = scrOutput
	}
	if f.Changed("max-pages") {
		cfg.MaxPages = scrMaxPages
	}
	if f.Changed("transport") && scrTransport != "" {
		cfg.Transport = scrTransport
	}
}

// scrape walks the search API and saves whatever it collected to the raw CSV.
// An early stop with listings in hand is logged, not returned.
func scrape(ctx context.Context) ([]*models.RawListing, error) {
	if err := cfg.ValidateScrape(); err != nil {
		return nil, err
	}

	fetcher, err := webmotors.NewFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer fetcher.Close()

	raw, scrapeErr := webmotors.New(cfg, logger, fetcher, reg).Scrape(ctx)
	if len(raw) == 0 {
		if scrapeErr != nil {
			return nil, scrapeErr
		}
		return nil, errors.New("no listings were scraped")
	}
	if scrapeErr != nil {
		logger.Warn("Scrape stopped early (%v), keeping %d listings", scrapeErr, len(raw))
	}

	csvWriter, err := storage.NewCSVWriter(cfg.RawCSVPath)
	if err != nil {
		return raw, err
	}
	defer csvWriter.Close()

	if err := csvWriter.WriteRaw(raw); err != nil {
		return raw, err
	}
	logger.Info("Total vehicles extracted: %d, saved to %s", csvWriter.Rows(), cfg.RawCSVPath)
	return raw, nil
}
