package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AppendCSV appends rows to the metrics CSV at path, writing the header
// first when the file does not exist yet. Parent directories are created
// as needed.
func AppendCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Columns); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads every metric row from the CSV at path.
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metrics csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read metrics csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("parse metrics csv %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func csvRecord(row Row) []string {
	return []string{
		strconv.FormatInt(row.Timestamp.Unix(), 10),
		row.SubsetLabel,
		strconv.Itoa(row.ViewCount),
		row.ModelDir,
		row.Method,
		strconv.Itoa(row.Iteration),
		strconv.FormatFloat(row.PSNR, 'f', -1, 64),
		strconv.FormatFloat(row.SSIM, 'f', -1, 64),
		strconv.FormatFloat(row.LPIPS, 'f', -1, 64),
		joinViews(row.SelectedViews),
	}
}

func parseRecord(rec []string) (Row, error) {
	if len(rec) != len(Columns) {
		return Row{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(rec))
	}

	unix, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("timestamp: %w", err)
	}
	viewCount, err := strconv.Atoi(rec[2])
	if err != nil {
		return Row{}, fmt.Errorf("view_count: %w", err)
	}
	iteration, err := strconv.Atoi(rec[5])
	if err != nil {
		return Row{}, fmt.Errorf("iteration: %w", err)
	}
	psnr, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return Row{}, fmt.Errorf("psnr: %w", err)
	}
	ssim, err := strconv.ParseFloat(rec[7], 64)
	if err != nil {
		return Row{}, fmt.Errorf("ssim: %w", err)
	}
	lpips, err := strconv.ParseFloat(rec[8], 64)
	if err != nil {
		return Row{}, fmt.Errorf("lpips: %w", err)
	}

	return Row{
		Timestamp:     time.Unix(unix, 0).UTC(),
		SubsetLabel:   rec[1],
		ViewCount:     viewCount,
		ModelDir:      rec[3],
		Method:        rec[4],
		Iteration:     iteration,
		PSNR:          psnr,
		SSIM:          ssim,
		LPIPS:         lpips,
		SelectedViews: splitViews(rec[9]),
	}, nil
}
