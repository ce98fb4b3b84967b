package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bencullenn/chronicle-voice/internal/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRepository stores entries in a local SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository opens (and if needed creates) the database at dbPath.
func NewSQLiteRepository(dbPath string, logger *zap.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &SQLiteRepository{
		db:     db,
		logger: logger,
	}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Entry repository initialized", zap.String("db_path", dbPath))

	return repo, nil
}

// migrate creates tables
func (r *SQLiteRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entry (
		call_id TEXT PRIMARY KEY,
		transcript TEXT,
		cleaned_narrative TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entry_created_at ON entry(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ListCallIDs returns the IDs of every persisted entry.
func (r *SQLiteRepository) ListCallIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT call_id FROM entry`)
	if err != nil {
		return nil, &models.StorageError{Op: "list call ids", Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &models.StorageError{Op: "list call ids", Err: err}
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListEntries returns every persisted entry, newest first.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]models.Entry, error) {
	query := `
		SELECT call_id, COALESCE(transcript, ''), COALESCE(cleaned_narrative, ''), created_at
		FROM entry
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &models.StorageError{Op: "list entries", Err: err}
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.CallID, &e.Transcript, &e.CleanedNarrative, &e.CreatedAt); err != nil {
			r.logger.Error("Failed to scan entry", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertEntry inserts the entry or, when the call ID already exists,
// refreshes its transcript and timestamp in place.
func (r *SQLiteRepository) UpsertEntry(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entry (call_id, transcript, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(call_id) DO UPDATE SET
			transcript = excluded.transcript,
			created_at = excluded.created_at
	`

	if _, err := r.db.ExecContext(ctx, query, entry.CallID, entry.Transcript, entry.CreatedAt); err != nil {
		return &models.StorageError{Op: "upsert entry " + entry.CallID, Err: err}
	}
	return nil
}

// SaveNarrative attaches a cleaned narrative to an existing entry.
func (r *SQLiteRepository) SaveNarrative(ctx context.Context, callID, narrative string) error {
	query := `UPDATE entry SET cleaned_narrative = ? WHERE call_id = ?`

	if _, err := r.db.ExecContext(ctx, query, narrative, callID); err != nil {
		return &models.StorageError{Op: "save narrative " + callID, Err: err}
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
