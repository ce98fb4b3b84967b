// Package service holds the sync pipeline: list remote calls, reconcile
// against the entry store, fetch missing transcripts, clean narratives, and
// assemble the journal-entry view.
package service

import (
	"context"

	"github.com/bencullenn/chronicle-voice/internal/models"
	"github.com/bencullenn/chronicle-voice/internal/reconcile"
	"github.com/bencullenn/chronicle-voice/internal/repository"
	"github.com/bencullenn/chronicle-voice/internal/timestamp"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultConcurrency bounds the fan-out within a single pipeline stage.
const defaultConcurrency = 8

// VoiceClient is the remote voice-call provider boundary.
type VoiceClient interface {
	ListCalls(ctx context.Context) ([]models.Call, error)
	GetCall(ctx context.Context, id string) (*models.Call, error)
}

// NarrativeGenerator turns a raw transcript into a cleaned journal narrative.
type NarrativeGenerator interface {
	CleanTranscript(ctx context.Context, transcript string) (string, error)
}

// Syncer drives one end-to-end sync run. It owns its working set for the
// duration of a Run call; persisted IDs are re-read fresh every run.
type Syncer struct {
	voice       VoiceClient
	repo        repository.EntryRepository
	generator   NarrativeGenerator
	resolver    *timestamp.Resolver
	logger      *zap.Logger
	concurrency int
}

// NewSyncer creates a new sync service.
func NewSyncer(
	voice VoiceClient,
	repo repository.EntryRepository,
	generator NarrativeGenerator,
	logger *zap.Logger,
) *Syncer {
	return &Syncer{
		voice:       voice,
		repo:        repo,
		generator:   generator,
		resolver:    timestamp.NewResolver(),
		logger:      logger,
		concurrency: defaultConcurrency,
	}
}

// Run executes the full pipeline and returns the merged entry list in remote
// listing order. Only a failure of the initial listing call is fatal; every
// later stage degrades per item.
func (s *Syncer) Run(ctx context.Context) ([]models.JournalEntry, error) {
	log := s.logger.With(zap.String("run_id", uuid.New().String()))

	calls, err := s.voice.ListCalls(ctx)
	if err != nil {
		log.Error("Failed to list remote calls", zap.Error(err))
		return nil, err
	}

	remoteIDs := make([]string, 0, len(calls))
	for _, call := range calls {
		remoteIDs = append(remoteIDs, call.ID)
	}

	persistedIDs, err := s.repo.ListCallIDs(ctx)
	if err != nil {
		// Upserts are idempotent, so over-fetching against an unreadable
		// store is safe. Treat everything as missing rather than failing.
		log.Warn("Failed to list persisted call IDs, treating store as empty", zap.Error(err))
		persistedIDs = nil
	}

	existing, missing := reconcile.Diff(remoteIDs, persistedIDs)
	log.Info("Reconciled remote calls",
		zap.Int("remote", len(remoteIDs)),
		zap.Int("existing", len(existing)),
		zap.Int("missing", len(missing)))

	if len(missing) > 0 {
		results, err := s.FetchTranscripts(ctx, missing)
		if err != nil {
			log.Warn("Transcript fetch batch rejected", zap.Error(err))
		}
		for _, res := range results {
			if !res.Success {
				log.Warn("Transcript fetch failed",
					zap.String("call_id", res.CallID),
					zap.String("error", res.Error))
			}
		}
	}

	entriesByID := s.loadEntryHints(ctx, log)

	return s.cleanAndAssemble(ctx, log, calls, entriesByID), nil
}

// FetchTranscripts fetches and persists the transcript for each ID in the
// batch concurrently. One ID's failure never aborts the others; each outcome
// is reported individually.
func (s *Syncer) FetchTranscripts(ctx context.Context, ids []string) ([]models.FetchResult, error) {
	if len(ids) == 0 {
		return nil, &models.ValidationError{Msg: "call IDs must be provided as a non-empty list"}
	}

	results := make([]models.FetchResult, len(ids))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)

	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			results[i] = s.fetchOne(gctx, id)
			return nil
		})
	}
	eg.Wait() //nolint:errcheck // workers never return errors, outcomes are per-ID

	return results, nil
}

func (s *Syncer) fetchOne(ctx context.Context, id string) models.FetchResult {
	call, err := s.voice.GetCall(ctx, id)
	if err != nil {
		s.logger.Error("Failed to fetch call detail",
			zap.String("call_id", id),
			zap.Error(err))
		return models.FetchResult{CallID: id, Success: false, Error: err.Error()}
	}

	entry := &models.Entry{
		CallID:     id,
		Transcript: call.Transcript,
		CreatedAt:  s.resolver.Resolve(id, call.CreatedAt, call.StartedAt, call.EndedAt),
	}

	if err := s.repo.UpsertEntry(ctx, entry); err != nil {
		s.logger.Error("Failed to persist entry",
			zap.String("call_id", id),
			zap.Error(err))
		return models.FetchResult{CallID: id, Success: false, Error: err.Error()}
	}

	return models.FetchResult{CallID: id, Success: true}
}

// CheckCalls partitions the given IDs against the entry store.
func (s *Syncer) CheckCalls(ctx context.Context, ids []string) (*models.CheckResult, error) {
	if len(ids) == 0 {
		return nil, &models.ValidationError{Msg: "call IDs must be provided as a non-empty list"}
	}

	persistedIDs, err := s.repo.ListCallIDs(ctx)
	if err != nil {
		return nil, err
	}

	existing, missing := reconcile.Diff(ids, persistedIDs)
	return &models.CheckResult{ExistingCallIDs: existing, MissingCallIDs: missing}, nil
}

// ListEntries returns every persisted entry.
func (s *Syncer) ListEntries(ctx context.Context) ([]models.Entry, error) {
	return s.repo.ListEntries(ctx)
}

// loadEntryHints reloads the canonical persisted entries. Best-effort: the
// pipeline still completes with degraded timestamps when the store is
// unreadable.
func (s *Syncer) loadEntryHints(ctx context.Context, log *zap.Logger) map[string]models.Entry {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		log.Warn("Failed to reload persisted entries", zap.Error(err))
		return nil
	}

	byID := make(map[string]models.Entry, len(entries))
	for _, e := range entries {
		byID[e.CallID] = e
	}
	return byID
}

// cleanAndAssemble runs the narrative-cleaning fan-out and merges calls with
// their persisted entries, preserving remote listing order and dropping
// duplicate IDs.
func (s *Syncer) cleanAndAssemble(
	ctx context.Context,
	log *zap.Logger,
	calls []models.Call,
	entriesByID map[string]models.Entry,
) []models.JournalEntry {
	assembled := make([]models.JournalEntry, len(calls))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)

	for i, call := range calls {
		i, call := i, call
		eg.Go(func() error {
			hint, ok := entriesByID[call.ID]
			var hintPtr *models.Entry
			if ok {
				hintPtr = &hint
			}
			assembled[i] = s.buildEntry(gctx, log, call, hintPtr)
			return nil
		})
	}
	eg.Wait() //nolint:errcheck // workers never return errors, failures degrade per call

	seen := make(map[string]struct{}, len(assembled))
	entries := make([]models.JournalEntry, 0, len(assembled))
	for _, e := range assembled {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		entries = append(entries, e)
	}

	log.Info("Sync run completed", zap.Int("entries", len(entries)))
	return entries
}

// buildEntry merges one remote call with its persisted entry, cleaning the
// transcript when one is available. Generation failure leaves the entry
// uncleaned; it never fails the run.
func (s *Syncer) buildEntry(
	ctx context.Context,
	log *zap.Logger,
	call models.Call,
	hint *models.Entry,
) models.JournalEntry {
	transcript := call.Transcript
	if transcript == "" && hint != nil {
		transcript = hint.Transcript
	}

	createdCandidates := make([]string, 0, 4)
	if hint != nil && !hint.CreatedAt.IsZero() {
		createdCandidates = append(createdCandidates, timestamp.Canonical(hint.CreatedAt))
	}
	createdCandidates = append(createdCandidates, call.CreatedAt, call.StartedAt, call.EndedAt)

	entry := models.JournalEntry{
		ID:         call.ID,
		Title:      call.Title,
		Timestamp:  s.resolver.ResolveClockOffset(call.ID, call.StartedAt, call.CreatedAt, call.EndedAt),
		CreatedAt:  s.resolver.Resolve(call.ID, createdCandidates...),
		Transcript: transcript,
	}

	if hint != nil {
		entry.CleanedNarrative = hint.CleanedNarrative
	}

	if transcript == "" {
		return entry
	}

	narrative, err := s.generator.CleanTranscript(ctx, transcript)
	if err != nil {
		log.Warn("Narrative cleaning skipped",
			zap.String("call_id", call.ID),
			zap.Error(&models.GenerationError{Err: err}))
		return entry
	}

	entry.CleanedNarrative = narrative

	if err := s.repo.SaveNarrative(ctx, call.ID, narrative); err != nil {
		// Non-fatal: the narrative is still served this run and will be
		// regenerated next run.
		log.Warn("Failed to persist narrative",
			zap.String("call_id", call.ID),
			zap.Error(err))
	}

	return entry
}
