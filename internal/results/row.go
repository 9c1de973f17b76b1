// Package results collects per-run metric rows from the external
// evaluation scripts and persists them to CSV and SQLite.
package results

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Columns is the fixed CSV column order for metric rows.
var Columns = []string{
	"timestamp",
	"subset_label",
	"view_count",
	"model_dir",
	"method",
	"iteration",
	"psnr",
	"ssim",
	"lpips",
	"selected_views",
}

// MethodMetrics is one method's entry in the external results.json
// (e.g. "ours_30000" -> PSNR/SSIM/LPIPS).
type MethodMetrics struct {
	PSNR  float64 `json:"PSNR"`
	SSIM  float64 `json:"SSIM"`
	LPIPS float64 `json:"LPIPS"`
}

// Row is one collected metric measurement.
type Row struct {
	Timestamp     time.Time
	SubsetLabel   string
	ViewCount     int
	ModelDir      string
	Method        string
	Iteration     int
	PSNR          float64
	SSIM          float64
	LPIPS         float64
	SelectedViews []string
}

// Metadata identifies the run a set of rows belongs to.
type Metadata struct {
	SubsetLabel   string
	ViewCount     int
	SelectedViews []string
	Timestamp     time.Time // zero value means now
}

var iterationPattern = regexp.MustCompile(`(\d+)`)

// ExtractIteration pulls the iteration number out of a method name like
// "ours_30000". Returns 0 when the name carries no number.
func ExtractIteration(method string) int {
	match := iterationPattern.FindString(method)
	if match == "" {
		return 0
	}
	var n int
	fmt.Sscanf(match, "%d", &n)
	return n
}

// ParseResults parses the results.json document written by the external
// metrics script: a map from method name to metric values.
func ParseResults(data []byte) (map[string]MethodMetrics, error) {
	results := make(map[string]MethodMetrics)
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse results.json: %w", err)
	}
	return results, nil
}

// RowsFromResults converts parsed results into metric rows, ordered by
// method name so output is deterministic.
func RowsFromResults(results map[string]MethodMetrics, modelDir string, meta Metadata) []Row {
	ts := meta.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	methods := make([]string, 0, len(results))
	for method := range results {
		methods = append(methods, method)
	}
	sort.Strings(methods)

	rows := make([]Row, 0, len(methods))
	for _, method := range methods {
		m := results[method]
		rows = append(rows, Row{
			Timestamp:     ts,
			SubsetLabel:   meta.SubsetLabel,
			ViewCount:     meta.ViewCount,
			ModelDir:      modelDir,
			Method:        method,
			Iteration:     ExtractIteration(method),
			PSNR:          m.PSNR,
			SSIM:          m.SSIM,
			LPIPS:         m.LPIPS,
			SelectedViews: meta.SelectedViews,
		})
	}
	return rows
}

// joinViews renders the selected-view list for the CSV cell.
func joinViews(views []string) string {
	return strings.Join(views, ";")
}

// splitViews parses a CSV selected-views cell.
func splitViews(cell string) []string {
	if cell == "" {
		return nil
	}
	return strings.Split(cell, ";")
}
