// Package reconcile computes which remote call IDs already have a local
// entry and which still need one.
package reconcile

// Diff partitions remoteIDs into the subset already present in persistedIDs
// and the subset that is not. Output preserves the order of remoteIDs and
// drops duplicates. Pure function: it cannot fail.
func Diff(remoteIDs, persistedIDs []string) (existing, missing []string) {
	persisted := make(map[string]struct{}, len(persistedIDs))
	for _, id := range persistedIDs {
		persisted[id] = struct{}{}
	}

	existing = make([]string, 0, len(remoteIDs))
	missing = make([]string, 0, len(remoteIDs))

	seen := make(map[string]struct{}, len(remoteIDs))
	for _, id := range remoteIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if _, ok := persisted[id]; ok {
			existing = append(existing, id)
		} else {
			missing = append(missing, id)
		}
	}
	return existing, missing
}
