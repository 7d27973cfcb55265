// Command analyze computes descriptive statistics over the cleaned dataset
// and writes the summary and per-product metrics artifacts.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/qiyanche/book-price-analysis-project/analysis"
	"github.com/qiyanche/book-price-analysis-project/config"
	"github.com/qiyanche/book-price-analysis-project/logging"
	"github.com/qiyanche/book-price-analysis-project/models"
)

func main() {
	config.LoadEnv()
	defaultCfg := config.DefaultConfig()

	inputDefault := defaultCfg.CleanCSVFile
	if value, ok := config.EnvString("ANALYZE_IN_CSV"); ok {
		inputDefault = value
	}
	summaryDefault := defaultCfg.SummaryFile
	if value, ok := config.EnvString("ANALYZE_SUMMARY_OUT"); ok {
		summaryDefault = value
	}
	metricsDefault := defaultCfg.ProductMetricsFile
	if value, ok := config.EnvString("ANALYZE_METRICS_OUT"); ok {
		metricsDefault = value
	}

	inputCSV := flag.String("in", inputDefault, "Path of the cleaned CSV artifact")
	summaryOut := flag.String("summary-out", summaryDefault, "Path of the summary JSON artifact")
	metricsOut := flag.String("metrics-out", metricsDefault, "Path of the per-product metrics CSV")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	logging.Setup(*verbose)

	records, err := analysis.LoadRecords(*inputCSV)
	if err != nil {
		slog.Warn("cleaned dataset not readable, run the clean stage first",
			slog.String("path", *inputCSV),
			slog.Any("error", err),
		)
		return
	}

	prices := analysis.Prices(records)
	if len(prices) == 0 {
		slog.Warn("no valid prices in cleaned dataset, skipping aggregation",
			slog.String("path", *inputCSV),
		)
		return
	}

	stats := analysis.ComputeGlobalStats(prices)
	metrics := analysis.ComputeProductMetrics(records)

	if err := analysis.WriteSummary(*summaryOut, stats); err != nil {
		slog.Error("writing summary", slog.Any("error", err))
		os.Exit(1)
	}
	if err := analysis.WriteProductMetrics(*metricsOut, metrics); err != nil {
		slog.Error("writing product metrics", slog.Any("error", err))
		os.Exit(1)
	}

	printStats(stats, len(metrics), *summaryOut, *metricsOut)
}

func printStats(stats models.GlobalStats, products int, summaryPath, metricsPath string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Global price statistics")
	fmt.Printf("  count:  %d\n", stats.Count)
	fmt.Printf("  mean:   %.2f\n", stats.Mean)
	fmt.Printf("  median: %.2f\n", stats.Median)
	fmt.Printf("  std:    %.2f\n", stats.Std)
	fmt.Printf("  min:    %.2f\n", stats.Min)
	fmt.Printf("  max:    %.2f\n", stats.Max)
	fmt.Printf("  p25:    %.2f\n", stats.P25)
	fmt.Printf("  p75:    %.2f\n", stats.P75)
	fmt.Printf("  products: %d\n", products)
	fmt.Printf("  summary:  %s\n", summaryPath)
	fmt.Printf("  metrics:  %s\n", metricsPath)
	fmt.Println(separator)
}
