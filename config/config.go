package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings for every pipeline stage. Output paths are
// explicit here rather than package-level constants so each stage can be
// pointed at a temporary directory.
type Config struct {
	BaseURL        string
	Site           string
	MaxPages       int
	Delay          time.Duration
	RandomDelay    time.Duration
	Timeout        time.Duration
	UserAgent      string
	Accept         string
	AcceptLanguage string

	DefaultCurrency string

	RawDir             string
	CleanJSONFile      string
	CleanCSVFile       string
	SummaryFile        string
	ProductMetricsFile string

	DedupeMaxSize int
	PostgresDSN   string
	MetricsAddr   string
	Verbose       bool
}

// DefaultConfig returns conservative defaults for the demo catalog target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://books.toscrape.com",
		Site:           "books",
		MaxPages:       50,
		Delay:          1 * time.Second,
		RandomDelay:    1 * time.Second,
		Timeout:        15 * time.Second,
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",

		DefaultCurrency: "GBP",

		RawDir:             "data/raw",
		CleanJSONFile:      "data/processed/books_clean.json",
		CleanCSVFile:       "data/processed/prices.csv",
		SummaryFile:        "results/summary_stats.json",
		ProductMetricsFile: "results/metrics_by_product.csv",

		DedupeMaxSize: 100000,
		PostgresDSN:   "",
		MetricsAddr:   "",
		Verbose:       false,
	}
}

// LoadEnv reads a .env file if one exists, so system env vars and flags can
// layer on top of it.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment")
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.Site == "" {
		return fmt.Errorf("site label cannot be empty")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.RandomDelay < 0 {
		return fmt.Errorf("random delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.DefaultCurrency == "" {
		return fmt.Errorf("default currency cannot be empty")
	}
	if c.RawDir == "" {
		return fmt.Errorf("raw snapshot directory cannot be empty")
	}
	if c.CleanJSONFile == "" || c.CleanCSVFile == "" {
		return fmt.Errorf("cleaned dataset paths cannot be empty")
	}
	if c.SummaryFile == "" || c.ProductMetricsFile == "" {
		return fmt.Errorf("results paths cannot be empty")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe cache size must be positive")
	}

	return nil
}

// EnvInt reads an integer environment variable. The second return reports
// whether the variable was set.
func EnvInt(key string) (int, bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, true, nil
}

// EnvString reads a string environment variable and reports whether it was set.
func EnvString(key string) (string, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
