package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yegors/launchboard/internal/launches"
	"github.com/yegors/launchboard/pkg/logger"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNoImports is returned by LastImport when the mirror was never filled
var ErrNoImports = errors.New("no imports recorded")

// Open opens or creates the SQLite database at path
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	return db, nil
}

// LaunchStorage mirrors the launch table in SQLite
type LaunchStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewLaunchStorage creates the storage and its tables
func NewLaunchStorage(db *sql.DB, log *logger.Logger) (*LaunchStorage, error) {
	storage := &LaunchStorage{
		db:     db,
		logger: log.Named("sqlite-launches"),
	}

	if err := storage.initDB(); err != nil {
		return nil, err
	}

	return storage, nil
}

// initDB initializes the database tables
func (s *LaunchStorage) initDB() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS launches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			launch_site TEXT NOT NULL CHECK (launch_site <> ''),
			payload_mass_kg REAL NOT NULL CHECK (payload_mass_kg >= 0),
			booster_version_category TEXT NOT NULL,
			class INTEGER NOT NULL CHECK (class IN (0, 1))
		)`,
		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			imported_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_launches_site ON launches(launch_site)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate launch storage: %w", err)
		}
	}

	return nil
}

// ReplaceLaunches swaps the mirrored table for records in one transaction and
// records the import
func (s *LaunchStorage) ReplaceLaunches(ctx context.Context, source string, records []launches.LaunchRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM launches`); err != nil {
		return 0, fmt.Errorf("failed to clear launches: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO launches (launch_site, payload_mass_kg, booster_version_category, class)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.LaunchSite,
			rec.PayloadMassKg,
			rec.BoosterVersionCategory,
			int(rec.OutcomeClass),
		); err != nil {
			return 0, fmt.Errorf("failed to insert launch: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source, row_count, imported_at) VALUES (?, ?, ?)`,
		source,
		len(records),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record import: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	s.logger.Info("Launch mirror replaced",
		logger.String("source", source),
		logger.Int("rows", len(records)),
		logger.Int64("import_id", id),
	)

	return id, nil
}

// LoadLaunches returns the mirrored records in insertion order
func (s *LaunchStorage) LoadLaunches(ctx context.Context) ([]launches.LaunchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT launch_site, payload_mass_kg, booster_version_category, class
		FROM launches
		ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query launches: %w", err)
	}
	defer rows.Close()

	var records []launches.LaunchRecord
	for rows.Next() {
		var rec launches.LaunchRecord
		var class int
		if err := rows.Scan(
			&rec.LaunchSite,
			&rec.PayloadMassKg,
			&rec.BoosterVersionCategory,
			&class,
		); err != nil {
			return nil, fmt.Errorf("failed to scan launch: %w", err)
		}
		rec.OutcomeClass = launches.Outcome(class)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate launches: %w", err)
	}

	return records, nil
}

// CountLaunches returns the number of mirrored records
func (s *LaunchStorage) CountLaunches(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM launches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count launches: %w", err)
	}
	return n, nil
}

// LastImport returns the most recent import
func (s *LaunchStorage) LastImport(ctx context.Context) (*ImportRecord, error) {
	var record ImportRecord
	var importedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, row_count, imported_at
		FROM imports
		ORDER BY id DESC
		LIMIT 1`,
	).Scan(&record.ID, &record.Source, &record.RowCount, &importedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoImports
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last import: %w", err)
	}

	record.ImportedAt, err = time.Parse(time.RFC3339, importedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse imported_at: %w", err)
	}

	return &record, nil
}
