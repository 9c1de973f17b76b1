// Command aggregate-results turns the collected metrics CSV into a
// summary table, PNG plots, and an HTML report.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/splatbench/sparseview/internal/aggregate"
	"github.com/splatbench/sparseview/internal/results"
)

var (
	metricsCSV = flag.String("metrics-csv", "results/metrics.csv", "Collected metrics CSV")
	plotsDir   = flag.String("plots-dir", "results/plots", "Output directory for summary artifacts")
	htmlReport = flag.String("html", "", "HTML report path (default <plots-dir>/report.html)")
)

func main() {
	flag.Parse()

	if _, err := os.Stat(*metricsCSV); err != nil {
		log.Printf("no metrics file found at %s; nothing to aggregate", *metricsCSV)
		return
	}

	rows, err := results.ReadCSV(*metricsCSV)
	if err != nil {
		log.Fatalf("read metrics: %v", err)
	}
	if len(rows) == 0 {
		log.Printf("%s is empty; skipping aggregation", *metricsCSV)
		return
	}

	summary := aggregate.Summarize(rows)

	summaryCSV := filepath.Join(*plotsDir, "metrics_summary.csv")
	if err := aggregate.WriteSummaryCSV(summary, summaryCSV); err != nil {
		log.Fatalf("write summary csv: %v", err)
	}

	latest := aggregate.Latest(summary)
	if err := aggregate.PlotLatestMetrics(latest, filepath.Join(*plotsDir, "latest_metrics.png")); err != nil {
		log.Fatalf("plot latest metrics: %v", err)
	}
	if err := aggregate.PlotIterationTrends(summary, filepath.Join(*plotsDir, "iteration_trends")); err != nil {
		log.Fatalf("plot iteration trends: %v", err)
	}

	reportPath := *htmlReport
	if reportPath == "" {
		reportPath = filepath.Join(*plotsDir, "report.html")
	}
	if err := aggregate.WriteHTMLReport(summary, reportPath); err != nil {
		log.Fatalf("write html report: %v", err)
	}

	log.Printf("aggregated %d rows into %d groups; artifacts in %s", len(rows), len(summary), *plotsDir)
}
