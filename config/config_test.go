package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vehicle-insights/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCRAPE_MIN_DELAY_MS", "")
	t.Setenv("ANALYSIS_CONFIG", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinDelayMs != 2000 || cfg.MaxDelayMs != 4000 {
		t.Errorf("delay defaults: got %d-%d, want 2000-4000", cfg.MinDelayMs, cfg.MaxDelayMs)
	}
	if cfg.Analysis.ReferenceYear != 2025 || cfg.Analysis.PriceFloor != 5000 {
		t.Errorf("analysis defaults not applied: %+v", cfg.Analysis)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	content := "WEBMOTORS_COOKIE=abc\nWEBMOTORS_API_URL_TEMPLATE=https://example.test/api?page={page}\nSCRAPE_MAX_PAGES=7\n"
	if err := os.WriteFile(env, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set.
	os.Unsetenv("WEBMOTORS_COOKIE")
	os.Unsetenv("WEBMOTORS_API_URL_TEMPLATE")
	os.Unsetenv("SCRAPE_MAX_PAGES")
	t.Cleanup(func() {
		os.Unsetenv("WEBMOTORS_COOKIE")
		os.Unsetenv("WEBMOTORS_API_URL_TEMPLATE")
		os.Unsetenv("SCRAPE_MAX_PAGES")
	})

	cfg, err := Load(env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cookie != "abc" || cfg.MaxPages != 7 {
		t.Errorf("env file not applied: cookie=%q maxPages=%d", cfg.Cookie, cfg.MaxPages)
	}
	if err := cfg.ValidateScrape(); err != nil {
		t.Errorf("ValidateScrape: %v", err)
	}
}

func TestValidateScrape(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"missing cookie", Config{URLTemplate: "x{page}", Transport: "http"}, false},
		{"missing template", Config{Cookie: "c", Transport: "http"}, false},
		{"no placeholder", Config{Cookie: "c", URLTemplate: "https://x", Transport: "http"}, false},
		{"bad transport", Config{Cookie: "c", URLTemplate: "x{page}", Transport: "ftp"}, false},
		{"browser", Config{Cookie: "c", URLTemplate: "x{page}", Transport: "browser"}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.ValidateScrape()
		if (err == nil) != tt.ok {
			t.Errorf("%s: got err=%v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestDSNPrefersExplicitValue(t *testing.T) {
	c := &Config{PostgresDSN: "postgres://u@h/db"}
	if c.DSN() != "postgres://u@h/db" {
		t.Errorf("DSN: got %q", c.DSN())
	}
	c = &Config{PostgresHost: "h", PostgresPort: "1", PostgresUser: "u", PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=d sslmode=disable"
	if c.DSN() != want {
		t.Errorf("DSN: got %q, want %q", c.DSN(), want)
	}
}

func TestLoadAnalysisOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	content := `
reference_year: 2024
luxury_brands: [PORSCHE]
focus_groups:
  - category: Volume
    body_type: Hatchback
coverage_multipliers: [1, 1.5, 2]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadAnalysis(path)
	if err != nil {
		t.Fatalf("LoadAnalysis: %v", err)
	}
	if a.ReferenceYear != 2024 {
		t.Errorf("ReferenceYear: got %d", a.ReferenceYear)
	}
	if len(a.LuxuryBrands) != 1 || a.LuxuryBrands[0] != "PORSCHE" {
		t.Errorf("LuxuryBrands: got %v", a.LuxuryBrands)
	}
	if len(a.FocusGroups) != 1 || a.FocusGroups[0] != (models.GroupKey{Category: "Volume", BodyType: "Hatchback"}) {
		t.Errorf("FocusGroups: got %v", a.FocusGroups)
	}
	if len(a.CoverageMultipliers) != 3 {
		t.Errorf("CoverageMultipliers: got %v", a.CoverageMultipliers)
	}
	if a.ClusterCount != 3 || a.ClusterInits != 20 || len(a.EmergingBrands) == 0 {
		t.Errorf("defaults lost: %+v", a)
	}
}

func TestLoadAnalysisRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	if err := os.WriteFile(path, []byte("cluster_count: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAnalysis(path); err == nil {
		t.Fatal("expected validation error for cluster_count 0")
	}
}

func TestLoadAnalysisRejectsFewInits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	if err := os.WriteFile(path, []byte("cluster_inits: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadAnalysis(path)
	if err == nil || !strings.Contains(err.Error(), "cluster_inits") {
		t.Fatalf("expected cluster_inits validation error, got %v", err)
	}
}

func TestAnalysisSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := DefaultAnalysis()
	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadAnalysis(path)
	if err != nil {
		t.Fatalf("LoadAnalysis: %v", err)
	}
	if got.FocusGroups[4] != want.FocusGroups[4] || got.ClusterSeed != want.ClusterSeed {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
