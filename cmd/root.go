package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vehicle-insights/config"
	"vehicle-insights/metrics"
	"vehicle-insights/utils"
)

var (
	// Global flags
	envFile      string
	analysisFile string
	verbose      bool
	metricsFile  string

	// Loaded on every command run
	cfg    *config.Config
	logger *utils.Logger
	reg    *metrics.Registry
)

var rootCmd = &cobra.Command{
	Use:   "vehicle-insights",
	Short: "Scrape used-vehicle listings and analyse the local market",
	Long: `vehicle-insights collects used-vehicle listings from the Webmotors search API,
stores them as a raw CSV, and produces a market report: descriptive price statistics
by category and body type, dispersion coverage, focus-group profiles, a usage
sensitivity index and a k-means segmentation.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		if cfg.MetricsTextfile == "" {
			return nil
		}
		if err := reg.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return err
		}
		logger.Info("Metrics written to %s", cfg.MetricsTextfile)
		return nil
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&analysisFile, "analysis", "", "YAML file overriding analysis parameters (overrides ANALYSIS_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics here (overrides METRICS_TEXTFILE)")

	rootCmd.AddCommand(scrapeCmd, analyzeCmd, runCmd, configCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	c, err := config.Load(files...)
	if err != nil {
		return err
	}
	if analysisFile != "" {
		a, err := config.LoadAnalysis(analysisFile)
		if err != nil {
			return err
		}
		c.AnalysisFile = analysisFile
		c.Analysis = a
	}
	if metricsFile != "" {
		c.MetricsTextfile = metricsFile
	}

	level := c.LogLevel
	if verbose {
		level = "debug"
	}
	cfg = c
	logger = utils.NewLogger(level)
	reg = metrics.NewRegistry()
	return nil
}
