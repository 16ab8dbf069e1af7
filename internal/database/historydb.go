package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/autoreport/internal/model"
)

// DatabaseFile is the file name of the history database inside its directory.
const DatabaseFile = "autoreport.db"

// HistoryDB provides SQLite-based storage for report runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping fs.ErrNotExist is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DatabaseFile)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}
	dsn += "&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := hdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables(ctx context.Context) error {
	schema := `
	-- One row per generated report
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		title TEXT NOT NULL,
		output_path TEXT NOT NULL,
		common_misidentified INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

	-- One row per model per run, in report order
	CREATE TABLE IF NOT EXISTS run_models (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		model TEXT NOT NULL,
		dataset TEXT NOT NULL,
		source_path TEXT NOT NULL,
		accuracy REAL NOT NULL,
		image_count INTEGER NOT NULL,
		correct_count INTEGER NOT NULL,
		misidentified_count INTEGER NOT NULL,
		misidentified_json TEXT NOT NULL,
		UNIQUE(run_id, model)
	);

	CREATE INDEX IF NOT EXISTS idx_run_models_model ON run_models(model);
	`

	_, err := hdb.db.ExecContext(ctx, schema)
	return err
}

// Run is one generated report.
type Run struct {
	// ID is assigned by SaveRun.
	ID int64

	// CreatedAt is when the report was generated.
	CreatedAt time.Time

	// Title is the report title.
	Title string

	// OutputPath is where the report was written.
	OutputPath string

	// CommonMisidentified is the number of images every model got wrong.
	CommonMisidentified int

	// Models holds one record per model in report order.
	// ListRuns leaves it empty; GetRun fills it.
	Models []ModelRecord
}

// ModelRecord is the stored summary of one model in one run.
type ModelRecord struct {
	RunID              int64
	CreatedAt          time.Time
	Model              string
	Dataset            string
	SourcePath         string
	Accuracy           float64
	ImageCount         int
	CorrectCount       int
	MisidentifiedCount int

	// Misidentified lists the identifiers of incorrect records.
	Misidentified []string
}

// NewRun builds a Run from the models of one report.
func NewRun(title, outputPath string, createdAt time.Time, results []*model.ModelResults, commonMisidentified int) (*Run, error) {
	run := &Run{
		CreatedAt:           createdAt,
		Title:               title,
		OutputPath:          outputPath,
		CommonMisidentified: commonMisidentified,
		Models:              make([]ModelRecord, 0, len(results)),
	}

	for _, m := range results {
		s, err := m.Summary()
		if err != nil {
			return nil, err
		}
		run.Models = append(run.Models, ModelRecord{
			CreatedAt:          createdAt,
			Model:              s.Model,
			Dataset:            s.Dataset,
			SourcePath:         m.SourcePath(),
			Accuracy:           s.Accuracy,
			ImageCount:         s.ImageCount,
			CorrectCount:       s.CorrectCount,
			MisidentifiedCount: s.MisidentifiedCount,
			Misidentified:      m.MisidentifiedImages(),
		})
	}
	return run, nil
}

// SaveRun stores a run and its model records in one transaction and
// returns the new run id. run.ID and the RunID of its models are updated.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *Run) (int64, error) {
	if run == nil {
		return 0, errors.New("nil run")
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (created_at, title, output_path, common_misidentified)
	VALUES (?, ?, ?, ?)
	`,
		formatTimestamp(run.CreatedAt),
		run.Title,
		run.OutputPath,
		run.CommonMisidentified,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for i, m := range run.Models {
		misidentified := m.Misidentified
		if misidentified == nil {
			misidentified = []string{}
		}
		misidentifiedJSON, err := json.Marshal(misidentified)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize misidentified images: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO run_models (run_id, position, model, dataset, source_path, accuracy,
			image_count, correct_count, misidentified_count, misidentified_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			i,
			m.Model,
			m.Dataset,
			m.SourcePath,
			m.Accuracy,
			m.ImageCount,
			m.CorrectCount,
			m.MisidentifiedCount,
			string(misidentifiedJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save model %s: %w", m.Model, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = runID
	for i := range run.Models {
		run.Models[i].RunID = runID
	}
	return runID, nil
}

// ListRuns returns the most recent runs first, without their models.
// A limit of zero or less returns every run.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, created_at, title, output_path, common_misidentified
	FROM runs
	ORDER BY created_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.Title, &run.OutputPath, &run.CommonMisidentified); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = parseTimestamp(createdAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun retrieves a run with its models by id.
// It returns nil without error when the run does not exist.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*Run, error) {
	var run Run
	var createdAt string

	err := hdb.db.QueryRowContext(ctx, `
	SELECT id, created_at, title, output_path, common_misidentified
	FROM runs
	WHERE id = ?
	`, id).Scan(&run.ID, &createdAt, &run.Title, &run.OutputPath, &run.CommonMisidentified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.CreatedAt = parseTimestamp(createdAt)

	run.Models, err = hdb.queryModels(ctx, `
	WHERE m.run_id = ?
	ORDER BY m.position
	`, id)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListModels returns the names of every model with stored history.
func (hdb *HistoryDB) ListModels(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT DISTINCT model FROM run_models
	ORDER BY model
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var models []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		models = append(models, name)
	}

	return models, rows.Err()
}

// GetModelHistory returns every stored record of a model, most recent first.
func (hdb *HistoryDB) GetModelHistory(ctx context.Context, modelName string) ([]ModelRecord, error) {
	return hdb.queryModels(ctx, `
	WHERE m.model = ?
	ORDER BY r.created_at DESC, r.id DESC
	`, modelName)
}

// queryModels runs a run_models query completed by the given clause.
func (hdb *HistoryDB) queryModels(ctx context.Context, clause string, args ...any) ([]ModelRecord, error) {
	query := `
	SELECT m.run_id, r.created_at, m.model, m.dataset, m.source_path, m.accuracy,
		m.image_count, m.correct_count, m.misidentified_count, m.misidentified_json
	FROM run_models m
	JOIN runs r ON r.id = m.run_id
	` + clause

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query model history: %w", err)
	}
	defer rows.Close()

	var records []ModelRecord
	for rows.Next() {
		var rec ModelRecord
		var createdAt, misidentifiedJSON string
		if err := rows.Scan(
			&rec.RunID,
			&createdAt,
			&rec.Model,
			&rec.Dataset,
			&rec.SourcePath,
			&rec.Accuracy,
			&rec.ImageCount,
			&rec.CorrectCount,
			&rec.MisidentifiedCount,
			&misidentifiedJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan model record: %w", err)
		}
		rec.CreatedAt = parseTimestamp(createdAt)
		if err := json.Unmarshal([]byte(misidentifiedJSON), &rec.Misidentified); err != nil {
			return nil, fmt.Errorf("failed to parse misidentified images of %s: %w", rec.Model, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// formatTimestamp stores times as UTC RFC 3339 text, which sorts
// chronologically as a string.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timestampLayout)
}

// timestampLayout is RFC 3339 with fixed-width nanoseconds.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampFormats contains the timestamp formats parseTimestamp accepts.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
