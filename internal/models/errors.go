package models

import "fmt"

// ProviderError wraps a failure talking to the voice provider. A listing
// failure is fatal to a sync run; per-ID detail failures are not.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("voice provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError wraps a persistence failure. Always scoped to a single call ID
// within a batch.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// GenerationError wraps a narrative-cleaning failure. Per-item, never fatal
// to a run.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("narrative generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError reports malformed caller input, e.g. an empty ID batch.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
