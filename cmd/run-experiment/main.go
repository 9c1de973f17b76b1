// Command run-experiment executes sparse-view experiment configs end to
// end: subset the dataset, train the external Gaussian Splatting model,
// render held-out views, and collect metrics into CSV and SQLite.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/splatbench/sparseview/internal/experiment"
	"github.com/splatbench/sparseview/internal/fsutil"
	"github.com/splatbench/sparseview/internal/results"
	"github.com/splatbench/sparseview/internal/subset"
)

var (
	configDir      = flag.String("config-dir", "configs", "Directory of views_*.yaml experiment configs")
	configList     = flag.String("configs", "", "Comma-separated list of explicit config files")
	rawDataDir     = flag.String("raw-data-dir", "data/raw/lego", "Source dataset directory")
	splitsDir      = flag.String("splits-dir", "data/splits", "Directory for generated subsets")
	experimentsDir = flag.String("experiments-dir", "experiments/lego", "Directory for model output")
	resultsCSV     = flag.String("results-csv", "results/metrics.csv", "Metrics CSV path")
	metricsDB      = flag.String("metrics-db", "", "Optional SQLite metrics database path")
	externalDir    = flag.String("external-dir", "external/gaussian-splatting", "Gaussian Splatting checkout")
	python         = flag.String("python", "python3", "Python interpreter for the external scripts")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var configPaths []string
	if *configList != "" {
		for _, p := range strings.Split(*configList, ",") {
			configPaths = append(configPaths, strings.TrimSpace(p))
		}
	} else {
		discovered, err := experiment.DiscoverConfigs(*configDir)
		if err != nil {
			log.Fatalf("discover configs: %v", err)
		}
		configPaths = discovered
	}

	scripts := experiment.DefaultScripts(*externalDir)
	scripts.Python = *python

	runner := &experiment.Runner{
		Builder:  subset.NewBuilder(fsutil.OSFileSystem{}),
		Scripts:  scripts,
		Commands: experiment.ExecRunner{},
	}

	if *metricsDB != "" {
		store, err := results.OpenStore(*metricsDB)
		if err != nil {
			log.Fatalf("open metrics db: %v", err)
		}
		defer store.Close()
		runner.Store = store
	}

	paths := experiment.Paths{
		RawDataDir:     *rawDataDir,
		SplitsDir:      *splitsDir,
		ExperimentsDir: *experimentsDir,
		ResultsCSV:     *resultsCSV,
	}

	if err := runner.RunAll(ctx, configPaths, paths); err != nil {
		log.Fatalf("experiment batch finished with failures: %v", err)
	}
	log.Printf("all experiments complete; metrics at %s", *resultsCSV)
}
