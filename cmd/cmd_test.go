package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-insights/config"
	"vehicle-insights/models"
	"vehicle-insights/storage"
)

func writeSampleCSV(t *testing.T, path string) {
	t.Helper()
	w, err := storage.NewCSVWriter(path)
	require.NoError(t, err)
	defer w.Close()

	var raw []*models.RawListing
	for i := 0; i < 12; i++ {
		raw = append(raw,
			&models.RawListing{Brand: "FIAT", Model: "UNO", BodyType: "Hatchback",
				Price: strconv.Itoa(25000 + i*500), Mileage: strconv.Itoa(170000 + i*3000), ModelYear: "2009"},
			&models.RawListing{Brand: "BMW", Model: "X1", BodyType: "Utilitário esportivo",
				Price: strconv.Itoa(210000 + i*2000), Mileage: strconv.Itoa(20000 + i*1000), ModelYear: "2022"},
		)
	}
	require.NoError(t, w.WriteRaw(raw))
}

func TestAnalyzeCommandWritesMetrics(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("STORE_TO_DB", "")
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "raw.csv")
	promPath := filepath.Join(dir, "vehicle.prom")
	writeSampleCSV(t, csvPath)

	rootCmd.SetArgs([]string{"analyze", "--input", csvPath, "--metrics-file", promPath, "--env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, rootCmd.Execute())

	b, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "vehicle_rows_retained 24")
}

func TestConfigCommandRoundTrips(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "analysis.yaml")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config", out, "--metrics-file=", "--env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), out)

	a, err := config.LoadAnalysis(out)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAnalysis(), a)
}
