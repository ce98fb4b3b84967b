package models

import "time"

// Call is one call as reported by the voice provider. The date fields are the
// provider's raw strings and must not be trusted until they pass through the
// timestamp resolver.
type Call struct {
	ID         string `json:"id"`
	Title      string `json:"title,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	StartedAt  string `json:"startedAt,omitempty"`
	EndedAt    string `json:"endedAt,omitempty"`
}

// Entry is the durable record of a processed call, keyed by call ID. At most
// one row exists per call_id; CreatedAt is always a valid timestamp.
type Entry struct {
	CallID           string    `json:"call_id" db:"call_id"`
	Transcript       string    `json:"transcript,omitempty" db:"transcript"`
	CleanedNarrative string    `json:"cleaned_narrative,omitempty" db:"cleaned_narrative"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// JournalEntry merges a remote Call with its persisted Entry. It is derived
// per sync run and never stored.
type JournalEntry struct {
	ID               string    `json:"id"`
	Title            string    `json:"title,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	CreatedAt        time.Time `json:"created_at"`
	Transcript       string    `json:"transcript,omitempty"`
	CleanedNarrative string    `json:"cleaned_narrative,omitempty"`
}

// FetchResult is the per-ID outcome of a transcript fetch batch. One ID
// failing never aborts the others.
type FetchResult struct {
	CallID  string `json:"callId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CheckResult partitions a remote ID set against the store.
type CheckResult struct {
	ExistingCallIDs []string `json:"existingCallIds"`
	MissingCallIDs  []string `json:"missingCallIds"`
}

// CallRequest initiates an outbound call. Mode selects the assistant.
type CallRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Mode        string `json:"mode"`
}

// CallStatus is returned after an outbound call was placed.
type CallStatus struct {
	CallID      string    `json:"callId"`
	Status      string    `json:"status"`
	Mode        string    `json:"mode"`
	AssistantID string    `json:"assistantId"`
	Timestamp   time.Time `json:"timestamp"`
}
