package aggregate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTMLReport renders the summary as a self-contained HTML page with
// interactive charts: final metrics per view count plus per-metric
// iteration trends.
func WriteHTMLReport(summary []SummaryRow, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	page := components.NewPage()
	page.PageTitle = "Sparse-view experiment results"

	page.AddCharts(latestChart(Latest(summary)))
	for _, metric := range metricNames {
		page.AddCharts(trendChart(summary, metric))
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// latestChart plots final-iteration metric means against view count.
func latestChart(latest []SummaryRow) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Final metrics per view count",
			Subtitle: "mean over runs, highest iteration",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "views"}),
	)

	x := make([]string, 0, len(latest))
	for _, row := range latest {
		x = append(x, fmt.Sprintf("%d", row.ViewCount))
	}
	line.SetXAxis(x)

	for _, metric := range metricNames {
		data := make([]opts.LineData, 0, len(latest))
		for _, row := range latest {
			data = append(data, opts.LineData{Value: metricValue(row, metric)})
		}
		line.AddSeries(metric, data)
	}
	return line
}

// trendChart plots one metric across iterations, one series per view
// count.
func trendChart(summary []SummaryRow, metric string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s vs iteration", metric)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration"}),
	)

	iterations := make([]int, 0)
	seen := make(map[int]bool)
	for _, row := range summary {
		if !seen[row.Iteration] {
			seen[row.Iteration] = true
			iterations = append(iterations, row.Iteration)
		}
	}
	sort.Ints(iterations)

	x := make([]string, 0, len(iterations))
	for _, it := range iterations {
		x = append(x, fmt.Sprintf("%d", it))
	}
	line.SetXAxis(x)

	for _, viewCount := range ViewCounts(summary) {
		byIteration := make(map[int]float64)
		for _, row := range summary {
			if row.ViewCount == viewCount {
				byIteration[row.Iteration] = metricValue(row, metric)
			}
		}
		data := make([]opts.LineData, 0, len(iterations))
		for _, it := range iterations {
			data = append(data, opts.LineData{Value: byIteration[it]})
		}
		line.AddSeries(fmt.Sprintf("%d views", viewCount), data)
	}
	return line
}
