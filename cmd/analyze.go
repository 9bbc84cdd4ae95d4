package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"vehicle-insights/models"
	"vehicle-insights/services"
	"vehicle-insights/storage"
)

var (
	anaInput string
	anaStore bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse the raw CSV and print the market report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.RawCSVPath
		if anaInput != "" {
			path = anaInput
		}
		raw, err := storage.ReadRawCSV(path)
		if err != nil {
			return err
		}
		logger.Info("Loaded %d raw records from %s", len(raw), path)
		return analyze(raw)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&anaInput, "input", "i", "", "raw CSV to analyse (default RAW_CSV_PATH)")
	for _, c := range []*cobra.Command{analyzeCmd, runCmd} {
		c.Flags().BoolVar(&anaStore, "store", false, "export the analysed working set to PostgreSQL")
	}
}

// analyze runs the pipeline, prints the report and, when asked to, exports
// the working set.
func analyze(raw []*models.RawListing) error {
	report, working, err := services.NewAnalyzer(logger, cfg.Analysis, reg).Run(raw)
	if err != nil {
		return err
	}
	services.NewPrinter(os.Stdout).Print(report)

	if anaStore || cfg.StoreToDB || cfg.PostgresDSN != "" {
		store(report.RunID, working)
	}
	return nil
}

func store(runID string, working []*models.Listing) {
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(runID, working); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return
	}
	n, err := pgWriter.CountRun(runID)
	if err != nil {
		logger.Warn("Could not verify stored rows: %v", err)
		return
	}
	logger.Info("Working set stored in PostgreSQL (table: vehicle_listings, run %s, %d rows)", runID, n)
}
