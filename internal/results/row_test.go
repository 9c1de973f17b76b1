package results

import (
	"testing"
	"time"
)

func TestExtractIteration(t *testing.T) {
	tests := []struct {
		method string
		want   int
	}{
		{"ours_30000", 30000},
		{"ours_7000", 7000},
		{"iteration_100", 100},
		{"no_number", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ExtractIteration(tt.method); got != tt.want {
			t.Errorf("ExtractIteration(%q) = %d, want %d", tt.method, got, tt.want)
		}
	}
}

func TestParseResults(t *testing.T) {
	data := []byte(`{"ours_30000": {"PSNR": 28.1, "SSIM": 0.93, "LPIPS": 0.08}}`)
	parsed, err := ParseResults(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := parsed["ours_30000"]
	if !ok {
		t.Fatal("missing method entry")
	}
	if m.PSNR != 28.1 || m.SSIM != 0.93 || m.LPIPS != 0.08 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}

func TestParseResults_Malformed(t *testing.T) {
	if _, err := ParseResults([]byte("{oops")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRowsFromResults_Ordered(t *testing.T) {
	parsed := map[string]MethodMetrics{
		"ours_30000": {PSNR: 28, SSIM: 0.9, LPIPS: 0.1},
		"ours_7000":  {PSNR: 24, SSIM: 0.8, LPIPS: 0.2},
	}
	meta := Metadata{
		SubsetLabel:   "3_views",
		ViewCount:     3,
		SelectedViews: []string{"r_0", "r_33", "r_66"},
		Timestamp:     time.Unix(1700000000, 0),
	}

	rows := RowsFromResults(parsed, "experiments/3_views", meta)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Sorted by method name regardless of map order.
	if rows[0].Method != "ours_30000" || rows[1].Method != "ours_7000" {
		t.Errorf("unexpected order: %s, %s", rows[0].Method, rows[1].Method)
	}
	if rows[0].Iteration != 30000 {
		t.Errorf("iteration = %d, want 30000", rows[0].Iteration)
	}
	if rows[0].ViewCount != 3 || rows[0].SubsetLabel != "3_views" {
		t.Errorf("metadata not propagated: %+v", rows[0])
	}
	if !rows[0].Timestamp.Equal(meta.Timestamp) {
		t.Errorf("timestamp not propagated")
	}
}
