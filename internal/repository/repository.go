// Package repository persists journal entries keyed by call ID. Three
// backends are supported: sqlite (default, zero-setup), postgres, and the
// Supabase REST API.
package repository

import (
	"context"

	"github.com/bencullenn/chronicle-voice/internal/models"
)

// EntryRepository is the storage boundary the sync pipeline depends on.
// UpsertEntry is idempotent: applying it twice for the same call ID leaves
// exactly one row.
type EntryRepository interface {
	ListCallIDs(ctx context.Context) ([]string, error)
	ListEntries(ctx context.Context) ([]models.Entry, error)
	UpsertEntry(ctx context.Context, entry *models.Entry) error
	SaveNarrative(ctx context.Context, callID, narrative string) error
	Close() error
}
