package results

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists experiment runs and their metric rows to SQLite,
// giving experiments durable history beyond the append-only CSV.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) the metrics database at path
// and applies any pending schema migrations.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open metrics db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrateUp() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// RecordRun stores one run and its metric rows. If runID is empty a new
// UUID is generated. Returns the run ID.
func (s *Store) RecordRun(runID string, meta Metadata, modelDir string, rows []Row) (string, error) {
	if runID == "" {
		runID = uuid.New().String()
	}
	now := time.Now().UnixNano()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO experiment_runs (run_id, subset_label, view_count, model_dir, selected_views, created_at_ns)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, meta.SubsetLabel, meta.ViewCount, modelDir, joinViews(meta.SelectedViews), now,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, row := range rows {
		_, err = tx.Exec(
			`INSERT INTO run_metrics (run_id, method, iteration, psnr, ssim, lpips, recorded_at_ns)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, row.Method, row.Iteration, row.PSNR, row.SSIM, row.LPIPS, row.Timestamp.UnixNano(),
		)
		if err != nil {
			return "", fmt.Errorf("insert metric row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run insert: %w", err)
	}
	return runID, nil
}

// RunSummary is one stored run with its identifying metadata.
type RunSummary struct {
	RunID         string
	SubsetLabel   string
	ViewCount     int
	ModelDir      string
	SelectedViews []string
	CreatedAtNs   int64
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(
		`SELECT run_id, subset_label, view_count, model_dir, selected_views, created_at_ns
		 FROM experiment_runs ORDER BY created_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var views string
		if err := rows.Scan(&r.RunID, &r.SubsetLabel, &r.ViewCount, &r.ModelDir, &views, &r.CreatedAtNs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.SelectedViews = splitViews(views)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RowsForViewCount returns every stored metric row for runs with the
// given view count, reconstructed into the same Row shape the CSV path
// produces.
func (s *Store) RowsForViewCount(viewCount int) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT r.subset_label, r.view_count, r.model_dir, r.selected_views,
		        m.method, m.iteration, m.psnr, m.ssim, m.lpips, m.recorded_at_ns
		 FROM run_metrics m
		 JOIN experiment_runs r ON r.run_id = m.run_id
		 WHERE r.view_count = ?
		 ORDER BY m.recorded_at_ns`, viewCount)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var views string
		var recordedNs int64
		if err := rows.Scan(&row.SubsetLabel, &row.ViewCount, &row.ModelDir, &views,
			&row.Method, &row.Iteration, &row.PSNR, &row.SSIM, &row.LPIPS, &recordedNs); err != nil {
			return nil, fmt.Errorf("scan metric row: %w", err)
		}
		row.SelectedViews = splitViews(views)
		row.Timestamp = time.Unix(0, recordedNs).UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}
