package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bencullenn/chronicle-voice/internal/models"
	"github.com/bencullenn/chronicle-voice/internal/timestamp"

	supabase "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// SupabaseRepository stores entries in a Supabase project over its REST API.
// This is the backend the hosted deployment uses; sqlite/postgres exist for
// local development.
type SupabaseRepository struct {
	client *supabase.Client
	logger *zap.Logger
}

// supabaseEntry is the REST wire form of an entry row. PostgREST renders
// timestamps as strings, so created_at round-trips through RFC3339.
type supabaseEntry struct {
	CallID           string `json:"call_id"`
	Transcript       string `json:"transcript,omitempty"`
	CleanedNarrative string `json:"cleaned_narrative,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// NewSupabaseRepository creates a repository backed by the project at url.
func NewSupabaseRepository(url, key string, logger *zap.Logger) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}

	logger.Info("Supabase entry repository initialized", zap.String("url", url))

	return &SupabaseRepository{client: client, logger: logger}, nil
}

func (r *SupabaseRepository) ListCallIDs(ctx context.Context) ([]string, error) {
	data, _, err := r.client.From("entry").Select("call_id", "", false).Execute()
	if err != nil {
		return nil, &models.StorageError{Op: "list call ids", Err: err}
	}

	var rows []struct {
		CallID string `json:"call_id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &models.StorageError{Op: "list call ids", Err: fmt.Errorf("decode response: %w", err)}
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.CallID)
	}
	return ids, nil
}

func (r *SupabaseRepository) ListEntries(ctx context.Context) ([]models.Entry, error) {
	data, _, err := r.client.From("entry").
		Select("call_id, transcript, cleaned_narrative, created_at", "", false).
		Execute()
	if err != nil {
		return nil, &models.StorageError{Op: "list entries", Err: err}
	}

	var rows []supabaseEntry
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &models.StorageError{Op: "list entries", Err: fmt.Errorf("decode response: %w", err)}
	}

	entries := make([]models.Entry, 0, len(rows))
	for _, row := range rows {
		createdAt, ok := timestamp.Parse(row.CreatedAt)
		if !ok {
			r.logger.Warn("Entry row carries unparsable created_at, skipping",
				zap.String("call_id", row.CallID),
				zap.String("created_at", row.CreatedAt))
			continue
		}
		entries = append(entries, models.Entry{
			CallID:           row.CallID,
			Transcript:       row.Transcript,
			CleanedNarrative: row.CleanedNarrative,
			CreatedAt:        createdAt,
		})
	}
	return entries, nil
}

func (r *SupabaseRepository) UpsertEntry(ctx context.Context, entry *models.Entry) error {
	row := supabaseEntry{
		CallID:     entry.CallID,
		Transcript: entry.Transcript,
		CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339),
	}

	if _, _, err := r.client.From("entry").Upsert(row, "call_id", "", "").Execute(); err != nil {
		return &models.StorageError{Op: "upsert entry " + entry.CallID, Err: err}
	}
	return nil
}

func (r *SupabaseRepository) SaveNarrative(ctx context.Context, callID, narrative string) error {
	update := map[string]interface{}{"cleaned_narrative": narrative}

	_, _, err := r.client.From("entry").
		Update(update, "", "").
		Eq("call_id", callID).
		Execute()
	if err != nil {
		return &models.StorageError{Op: "save narrative " + callID, Err: err}
	}
	return nil
}

// Close is a no-op; the REST client holds no persistent connection.
func (r *SupabaseRepository) Close() error {
	return nil
}
