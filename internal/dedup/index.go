package dedup

import (
	"normas/internal/regulation"
)

// Partition splits candidates into records not yet persisted and duplicates.
// A candidate is a duplicate when its idempotency key is already in existing
// or was claimed by an earlier candidate in the same batch (first wins, in
// input order). Pure function: it performs no queries, the caller supplies
// the existing-key snapshot.
func Partition(candidates []regulation.Regulation, existing map[regulation.Key]struct{}) (fresh, duplicates []regulation.Regulation) {
	seen := make(map[regulation.Key]struct{}, len(existing)+len(candidates))
	for k := range existing {
		seen[k] = struct{}{}
	}

	for _, candidate := range candidates {
		key := candidate.Key()
		if _, dup := seen[key]; dup {
			duplicates = append(duplicates, candidate)
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, candidate)
	}

	return fresh, duplicates
}
