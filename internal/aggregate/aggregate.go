// Package aggregate summarizes collected experiment metrics across view
// counts and iterations, and renders summary artifacts (CSV, PNG plots,
// HTML report).
package aggregate

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/splatbench/sparseview/internal/results"
)

// SummaryRow is the mean of every metric over one (view count,
// iteration) group.
type SummaryRow struct {
	ViewCount int
	Iteration int
	PSNR      float64
	SSIM      float64
	LPIPS     float64
	Samples   int
}

type groupKey struct {
	viewCount int
	iteration int
}

// Summarize groups rows by (view count, iteration) and averages each
// metric. Output is sorted by view count then iteration.
func Summarize(rows []results.Row) []SummaryRow {
	groups := make(map[groupKey][]results.Row)
	for _, row := range rows {
		key := groupKey{row.ViewCount, row.Iteration}
		groups[key] = append(groups[key], row)
	}

	summary := make([]SummaryRow, 0, len(groups))
	for key, group := range groups {
		psnr := make([]float64, len(group))
		ssim := make([]float64, len(group))
		lpips := make([]float64, len(group))
		for i, row := range group {
			psnr[i] = row.PSNR
			ssim[i] = row.SSIM
			lpips[i] = row.LPIPS
		}
		summary = append(summary, SummaryRow{
			ViewCount: key.viewCount,
			Iteration: key.iteration,
			PSNR:      stat.Mean(psnr, nil),
			SSIM:      stat.Mean(ssim, nil),
			LPIPS:     stat.Mean(lpips, nil),
			Samples:   len(group),
		})
	}

	sort.Slice(summary, func(i, j int) bool {
		if summary[i].ViewCount != summary[j].ViewCount {
			return summary[i].ViewCount < summary[j].ViewCount
		}
		return summary[i].Iteration < summary[j].Iteration
	})
	return summary
}

// Latest keeps the highest-iteration row per view count, sorted by view
// count. This is the "final quality per view budget" table.
func Latest(summary []SummaryRow) []SummaryRow {
	latest := make(map[int]SummaryRow)
	for _, row := range summary {
		if best, ok := latest[row.ViewCount]; !ok || row.Iteration > best.Iteration {
			latest[row.ViewCount] = row
		}
	}

	out := make([]SummaryRow, 0, len(latest))
	for _, row := range latest {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ViewCount < out[j].ViewCount })
	return out
}

// ViewCounts returns the distinct view counts in summary order.
func ViewCounts(summary []SummaryRow) []int {
	seen := make(map[int]bool)
	var counts []int
	for _, row := range summary {
		if !seen[row.ViewCount] {
			seen[row.ViewCount] = true
			counts = append(counts, row.ViewCount)
		}
	}
	sort.Ints(counts)
	return counts
}

// WriteSummaryCSV writes the summary table to path.
func WriteSummaryCSV(summary []SummaryRow, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"view_count", "iteration", "psnr", "ssim", "lpips", "samples"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, row := range summary {
		record := []string{
			strconv.Itoa(row.ViewCount),
			strconv.Itoa(row.Iteration),
			strconv.FormatFloat(row.PSNR, 'f', -1, 64),
			strconv.FormatFloat(row.SSIM, 'f', -1, 64),
			strconv.FormatFloat(row.LPIPS, 'f', -1, 64),
			strconv.Itoa(row.Samples),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
