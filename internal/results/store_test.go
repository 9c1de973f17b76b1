package results

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndList(t *testing.T) {
	store := openTestStore(t)

	meta := Metadata{
		SubsetLabel:   "3_views",
		ViewCount:     3,
		SelectedViews: []string{"r_0", "r_33", "r_66"},
	}
	rows := sampleRows(time.Unix(1700000000, 0).UTC())
	for i := range rows {
		rows[i].SelectedViews = meta.SelectedViews
	}

	runID, err := store.RecordRun("", meta, "experiments/3_views", rows)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "3_views", runs[0].SubsetLabel)
	assert.Equal(t, 3, runs[0].ViewCount)
	assert.Equal(t, meta.SelectedViews, runs[0].SelectedViews)
}

func TestStore_RowsForViewCount(t *testing.T) {
	store := openTestStore(t)
	ts := time.Unix(1700000000, 0).UTC()

	meta3 := Metadata{SubsetLabel: "3_views", ViewCount: 3}
	_, err := store.RecordRun("", meta3, "experiments/3_views", sampleRows(ts))
	require.NoError(t, err)

	meta5 := Metadata{SubsetLabel: "5_views", ViewCount: 5}
	other := sampleRows(ts)
	for i := range other {
		other[i].SubsetLabel = "5_views"
		other[i].ViewCount = 5
	}
	_, err = store.RecordRun("", meta5, "experiments/5_views", other)
	require.NoError(t, err)

	got, err := store.RowsForViewCount(3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, row := range got {
		assert.Equal(t, 3, row.ViewCount)
		assert.Equal(t, "3_views", row.SubsetLabel)
	}

	none, err := store.RowsForViewCount(99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ExplicitRunID(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.RecordRun("run-fixed", Metadata{SubsetLabel: "x", ViewCount: 1}, "m", nil)
	require.NoError(t, err)
	assert.Equal(t, "run-fixed", runID)
}
