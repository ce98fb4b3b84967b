package repository

import (
	"context"
	"errors"

	"github.com/bencullenn/chronicle-voice/internal/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // Required for file source
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// PostgresRepository stores entries in a PostgreSQL database.
type PostgresRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresRepository connects to the database and runs migrations.
func NewPostgresRepository(dataSourceName string, logger *zap.Logger) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := migrateDB(db, logger); err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to the database!")
	return &PostgresRepository{db: db, logger: logger}, nil
}

// migrateDB runs database migrations.
func migrateDB(db *sqlx.DB, logger *zap.Logger) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "chronicle", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	logger.Info("Database migration was run successfully")
	return nil
}

func (r *PostgresRepository) ListCallIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT call_id FROM entry`); err != nil {
		return nil, &models.StorageError{Op: "list call ids", Err: err}
	}
	return ids, nil
}

func (r *PostgresRepository) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	query := `
		SELECT call_id, COALESCE(transcript, '') AS transcript,
		       COALESCE(cleaned_narrative, '') AS cleaned_narrative, created_at
		FROM entry
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, &models.StorageError{Op: "list entries", Err: err}
	}
	return entries, nil
}

func (r *PostgresRepository) UpsertEntry(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entry (call_id, transcript, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (call_id) DO UPDATE SET
			transcript = EXCLUDED.transcript,
			created_at = EXCLUDED.created_at
	`

	if _, err := r.db.ExecContext(ctx, query, entry.CallID, entry.Transcript, entry.CreatedAt); err != nil {
		return &models.StorageError{Op: "upsert entry " + entry.CallID, Err: err}
	}
	return nil
}

func (r *PostgresRepository) SaveNarrative(ctx context.Context, callID, narrative string) error {
	query := `UPDATE entry SET cleaned_narrative = $1 WHERE call_id = $2`

	if _, err := r.db.ExecContext(ctx, query, narrative, callID); err != nil {
		return &models.StorageError{Op: "save narrative " + callID, Err: err}
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
