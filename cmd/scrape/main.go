// Command scrape fetches the catalog listing pages and persists one raw
// snapshot under the raw-data directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qiyanche/book-price-analysis-project/config"
	"github.com/qiyanche/book-price-analysis-project/logging"
	"github.com/qiyanche/book-price-analysis-project/models"
	"github.com/qiyanche/book-price-analysis-project/pipeline"
	"github.com/qiyanche/book-price-analysis-project/scraper"
)

func main() {
	config.LoadEnv()
	defaultCfg := config.DefaultConfig()

	pagesDefault := defaultCfg.MaxPages
	if value, ok, err := config.EnvInt("SCRAPER_PAGES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_PAGES: %v\n", err)
		os.Exit(1)
	} else if ok {
		pagesDefault = value
	}
	baseURLDefault := defaultCfg.BaseURL
	if value, ok := config.EnvString("SCRAPER_BASE_URL"); ok {
		baseURLDefault = value
	}
	rawDirDefault := defaultCfg.RawDir
	if value, ok := config.EnvString("SCRAPER_RAW_DIR"); ok {
		rawDirDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	baseURL := flag.String("base-url", baseURLDefault, "Base URL of the catalog site")
	maxPages := flag.Int("pages", pagesDefault, "Maximum listing pages to attempt")
	delayMs := flag.Int("delay", int(defaultCfg.Delay/time.Millisecond), "Minimum delay between requests (milliseconds)")
	randomDelayMs := flag.Int("random-delay", int(defaultCfg.RandomDelay/time.Millisecond), "Random jitter added to delay (milliseconds)")
	rawDir := flag.String("raw-dir", rawDirDefault, "Directory for raw snapshot files")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	logging.Setup(*verbose)

	cfg := defaultCfg
	cfg.BaseURL = *baseURL
	cfg.MaxPages = *maxPages
	cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	cfg.RandomDelay = time.Duration(*randomDelayMs) * time.Millisecond
	cfg.RawDir = *rawDir
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("pages", cfg.MaxPages),
		slog.String("raw_dir", cfg.RawDir),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshot, result := s.Run(ctx)

	path, err := pipeline.WriteSnapshot(cfg.RawDir, snapshot)
	if err != nil {
		slog.Error("writing snapshot", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, path)
}

func printSummary(result *models.ScrapeResult, path string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")
	fmt.Printf("  Pages:      %d\n", result.PageCount)
	fmt.Printf("  Items:      %d\n", result.ItemCount)
	fmt.Printf("  Requests:   %d\n", result.RequestCount)
	fmt.Printf("  Errors:     %d\n", result.ErrorCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types: %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:   %v\n", result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
	fmt.Printf("  Snapshot:   %s\n", path)
	fmt.Println(separator)
}
