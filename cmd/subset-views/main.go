// Command subset-views builds a sparse-view subset of a NeRF-synthetic
// dataset: a handful of training views, the full held-out sets, and the
// reference normalization computed from the complete camera set.
package main

import (
	"flag"
	"log"
	"strconv"
	"strings"

	"github.com/splatbench/sparseview/internal/fsutil"
	"github.com/splatbench/sparseview/internal/subset"
)

var (
	rawDataDir    = flag.String("raw-data-dir", "", "Source dataset directory (required)")
	outputDir     = flag.String("output-dir", "", "Subset output directory (required)")
	viewCount     = flag.Int("view-count", 3, "Number of training views to keep")
	indices       = flag.String("indices", "", "Comma-separated frame indices (overrides view-count)")
	names         = flag.String("names", "", "Comma-separated frame names (overrides indices)")
	strategy      = flag.String("strategy", subset.StrategyUniform, "Selection strategy: uniform or random")
	seed          = flag.Int64("seed", 0, "Seed for the random strategy")
	extension     = flag.String("extension", ".png", "Image file extension")
	noFullTestSet = flag.Bool("no-full-test-set", false, "Filter test/val to selected views (metrics not comparable across view counts)")
	noNorm        = flag.Bool("no-normalization", false, "Skip writing the reference normalization file")
)

func parseIndices(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			log.Fatalf("invalid index %q: %v", p, err)
		}
		out = append(out, n)
	}
	return out
}

func parseNames(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func main() {
	flag.Parse()

	if *rawDataDir == "" || *outputDir == "" {
		log.Fatal("both -raw-data-dir and -output-dir are required")
	}

	opts := subset.DefaultOptions(subset.Selection{
		ViewCount: *viewCount,
		Strategy:  *strategy,
		Seed:      *seed,
		Indices:   parseIndices(*indices),
		Names:     parseNames(*names),
	})
	opts.Extension = *extension
	opts.FullTestSet = !*noFullTestSet
	opts.WriteNormalization = !*noNorm

	builder := subset.NewBuilder(fsutil.OSFileSystem{})
	summary, err := builder.Create(*rawDataDir, *outputDir, opts)
	if err != nil {
		log.Fatalf("subset build failed: %v", err)
	}

	log.Printf("subset ready at %s: %d views, frames per transform: %v",
		summary.SubsetDir, summary.ViewCount, summary.Files)
	if summary.Normalization != nil {
		log.Printf("reference normalization: translate=%v radius=%.4f",
			summary.Normalization.Translate, summary.Normalization.Radius)
	}
}
