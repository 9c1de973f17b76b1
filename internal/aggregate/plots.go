package aggregate

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// metricNames in plotting order.
var metricNames = []string{"psnr", "ssim", "lpips"}

// linePalette gives each series a stable, distinguishable colour.
var linePalette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

func metricValue(row SummaryRow, metric string) float64 {
	switch metric {
	case "psnr":
		return row.PSNR
	case "ssim":
		return row.SSIM
	default:
		return row.LPIPS
	}
}

// PlotLatestMetrics renders the highest-iteration metrics per view count
// into a single PNG: one line per metric over the view-count axis.
func PlotLatestMetrics(latest []SummaryRow, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create plots dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Highest iteration metrics per view-count"
	p.X.Label.Text = "View count"
	p.Y.Label.Text = "Metric"
	p.Add(plotter.NewGrid())

	for i, metric := range metricNames {
		pts := make(plotter.XYs, 0, len(latest))
		for _, row := range latest {
			pts = append(pts, plotter.XY{X: float64(row.ViewCount), Y: metricValue(row, metric)})
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("build %s series: %w", metric, err)
		}
		c := linePalette[i%len(linePalette)]
		line.Color = c
		line.Width = vg.Points(1)
		points.Color = c
		p.Add(line, points)
		p.Legend.Add(metric, line, points)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, dest); err != nil {
		return fmt.Errorf("save plot %s: %w", dest, err)
	}
	return nil
}

// PlotIterationTrends renders one PNG per metric showing how the metric
// evolves over training iterations, one line per view count. Files are
// named <prefix>_<metric>_trend.png.
func PlotIterationTrends(summary []SummaryRow, destPrefix string) error {
	if err := os.MkdirAll(filepath.Dir(destPrefix), 0o755); err != nil {
		return fmt.Errorf("create plots dir: %w", err)
	}

	viewCounts := ViewCounts(summary)

	for _, metric := range metricNames {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s vs iteration", metric)
		p.X.Label.Text = "Iteration"
		p.Y.Label.Text = metric
		p.Legend.Top = true
		p.Add(plotter.NewGrid())

		for i, viewCount := range viewCounts {
			pts := make(plotter.XYs, 0, len(summary))
			for _, row := range summary {
				if row.ViewCount != viewCount {
					continue
				}
				pts = append(pts, plotter.XY{X: float64(row.Iteration), Y: metricValue(row, metric)})
			}
			if len(pts) == 0 {
				continue
			}
			line, points, err := plotter.NewLinePoints(pts)
			if err != nil {
				return fmt.Errorf("build %s/%d series: %w", metric, viewCount, err)
			}
			c := linePalette[i%len(linePalette)]
			line.Color = c
			line.Width = vg.Points(1)
			points.Color = c
			p.Add(line, points)
			p.Legend.Add(fmt.Sprintf("%d views", viewCount), line, points)
		}

		dest := fmt.Sprintf("%s_%s_trend.png", destPrefix, metric)
		if err := p.Save(6*vg.Inch, 4*vg.Inch, dest); err != nil {
			return fmt.Errorf("save plot %s: %w", dest, err)
		}
	}
	return nil
}
