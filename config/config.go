package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Search API access (see .env.example).
	Cookie      string
	URLTemplate string

	Transport      string // http|browser
	MinDelayMs     int
	MaxDelayMs     int
	HTTPTimeoutSec int
	MaxPages       int
	MaxRetries     int
	ChromeBin      string

	RawCSVPath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	// PostgresDSN, when set, wins over the individual fields.
	PostgresDSN string
	StoreToDB   bool

	MetricsTextfile string
	LogLevel        string

	AnalysisFile string
	Analysis     Analysis
}

// Load reads the .env file (or the given files) and returns a populated Config.
// Analysis parameters start from DefaultAnalysis and are overridden by the
// YAML file named in ANALYSIS_CONFIG, if any.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		Cookie:      getEnv("WEBMOTORS_COOKIE", ""),
		URLTemplate: getEnv("WEBMOTORS_API_URL_TEMPLATE", ""),

		Transport:      strings.ToLower(getEnv("SCRAPE_TRANSPORT", "http")),
		MinDelayMs:     getEnvInt("SCRAPE_MIN_DELAY_MS", 2000),
		MaxDelayMs:     getEnvInt("SCRAPE_MAX_DELAY_MS", 4000),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 25),
		MaxPages:       getEnvInt("SCRAPE_MAX_PAGES", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		RawCSVPath: getEnv("RAW_CSV_PATH", "./data/raw/base_floripa_completa.csv"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "insights"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "vehicles"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresDSN:      getEnv("POSTGRES_DSN", ""),
		StoreToDB:        getEnvBool("STORE_TO_DB", false),

		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		AnalysisFile: getEnv("ANALYSIS_CONFIG", ""),
		Analysis:     DefaultAnalysis(),
	}

	if cfg.AnalysisFile != "" {
		a, err := LoadAnalysis(cfg.AnalysisFile)
		if err != nil {
			return nil, err
		}
		cfg.Analysis = a
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.PostgresDSN != "" {
		return c.PostgresDSN
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// ValidateScrape checks the settings the acquisition step cannot run without.
func (c *Config) ValidateScrape() error {
	if c.Cookie == "" {
		return fmt.Errorf("config: WEBMOTORS_COOKIE is not set")
	}
	if c.URLTemplate == "" {
		return fmt.Errorf("config: WEBMOTORS_API_URL_TEMPLATE is not set")
	}
	if !strings.Contains(c.URLTemplate, "{page}") {
		return fmt.Errorf("config: WEBMOTORS_API_URL_TEMPLATE must contain a {page} placeholder")
	}
	switch c.Transport {
	case "http", "browser":
	default:
		return fmt.Errorf("config: unknown SCRAPE_TRANSPORT %q (want http or browser)", c.Transport)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
