package experiment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/splatbench/sparseview/internal/results"
	"github.com/splatbench/sparseview/internal/subset"
)

// ErrNoConfigs is returned when a batch run finds nothing to execute.
var ErrNoConfigs = errors.New("experiment: no configuration files found")

// Paths holds the default locations a batch of experiments works with.
// Individual configs can override each one.
type Paths struct {
	RawDataDir     string
	SplitsDir      string
	ExperimentsDir string
	ResultsCSV     string
}

// Runner executes experiment configs end to end: subset, train, render,
// metrics, collect.
type Runner struct {
	Builder  *subset.Builder
	Scripts  Scripts
	Commands CommandRunner
	Store    *results.Store // optional; nil disables the SQLite history
}

// RunConfig executes a single experiment definition.
func (r *Runner) RunConfig(ctx context.Context, cfg *Config, paths Paths) error {
	label := cfg.Label()
	log.Printf("experiment %s: starting", label)

	rawDir := cfg.Subset.RawDir
	if rawDir == "" {
		rawDir = paths.RawDataDir
	}

	sel := cfg.Subset.Selection
	if sel.ViewCount == 0 {
		sel.ViewCount = cfg.Subset.ViewCount
	}
	if sel.Strategy == "" {
		sel.Strategy = subset.StrategyUniform
	}

	targetDir := cfg.Subset.OutputDir
	if targetDir == "" {
		targetDir = filepath.Join(paths.SplitsDir, fmt.Sprintf("%d_views", cfg.ViewCount()))
	}

	opts := subset.DefaultOptions(sel)
	if cfg.Subset.Extension != "" {
		opts.Extension = cfg.Subset.Extension
	}
	if cfg.Subset.FullTestSet != nil {
		opts.FullTestSet = *cfg.Subset.FullTestSet
	}

	summary, err := r.Builder.Create(rawDir, targetDir, opts)
	if err != nil {
		return fmt.Errorf("build subset: %w", err)
	}
	log.Printf("experiment %s: subset ready at %s (%d views)", label, summary.SubsetDir, summary.ViewCount)

	modelDir := cfg.Training.ModelDir
	if modelDir == "" {
		modelDir = filepath.Join(paths.ExperimentsDir, label)
	}

	if err := r.Scripts.TrainModel(ctx, r.Commands, summary.SubsetDir, modelDir, cfg.Training.Args); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	iterations := cfg.RenderIterations()
	if len(iterations) == 0 {
		return fmt.Errorf("experiment %s: no render iterations configured", label)
	}
	var renderArgs map[string]any
	if cfg.Render != nil {
		renderArgs = cfg.Render.Args
	}
	for _, iteration := range iterations {
		if err := r.Scripts.RenderIteration(ctx, r.Commands, summary.SubsetDir, modelDir, iteration, renderArgs); err != nil {
			return fmt.Errorf("render iteration %d: %w", iteration, err)
		}
	}

	if err := r.Scripts.ComputeMetrics(ctx, r.Commands, modelDir, cfg.Metrics.Args); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	return r.collect(cfg, label, modelDir, summary, paths)
}

// collect parses results.json and appends rows to the CSV and, when
// configured, the SQLite history. A missing results file is logged and
// skipped: the external metrics script owns that contract.
func (r *Runner) collect(cfg *Config, label, modelDir string, summary *subset.Summary, paths Paths) error {
	resultsPath := filepath.Join(modelDir, "results.json")
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		log.Printf("experiment %s: no results at %s, skipping collection", label, resultsPath)
		return nil
	}

	parsed, err := results.ParseResults(data)
	if err != nil {
		return fmt.Errorf("parse results: %w", err)
	}
	if len(parsed) == 0 {
		log.Printf("experiment %s: results file empty, skipping collection", label)
		return nil
	}

	meta := results.Metadata{
		SubsetLabel:   label,
		ViewCount:     summary.ViewCount,
		SelectedViews: summary.SelectedViews,
		Timestamp:     time.Now(),
	}
	rows := results.RowsFromResults(parsed, modelDir, meta)

	csvPath := cfg.Metrics.CSV
	if csvPath == "" {
		csvPath = paths.ResultsCSV
	}
	if err := results.AppendCSV(csvPath, rows); err != nil {
		return fmt.Errorf("append metrics csv: %w", err)
	}
	log.Printf("experiment %s: appended %d metric rows to %s", label, len(rows), csvPath)

	if r.Store != nil {
		runID, err := r.Store.RecordRun("", meta, modelDir, rows)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Printf("experiment %s: stored run %s", label, runID)
	}
	return nil
}

// RunAll executes each config file in order. A failing experiment is
// logged and the batch continues; the error of the last failure is
// returned so callers can exit non-zero.
func (r *Runner) RunAll(ctx context.Context, configPaths []string, paths Paths) error {
	if len(configPaths) == 0 {
		return ErrNoConfigs
	}

	var lastErr error
	for _, path := range configPaths {
		log.Printf("running experiment defined in %s", path)
		cfg, err := LoadConfig(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			lastErr = err
			continue
		}
		if err := r.RunConfig(ctx, cfg, paths); err != nil {
			log.Printf("experiment %s failed: %v", cfg.Label(), err)
			lastErr = err
			continue
		}
	}
	return lastErr
}
