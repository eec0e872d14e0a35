// Package resolve holds the pure conflict-resolution rules applied when a
// locally cached record and its remote counterpart disagree.
package resolve

import "github.com/rafag508/mycollection/internal/models"

// Source identifies which side won a resolution
type Source int

const (
	SourceLocal Source = iota
	SourceRemote
)

// Progress resolves a watch-progress conflict by last-write-wins on the
// LastUpdated stamp. A record present on only one side wins outright. Ties
// favor local: two devices writing in the same millisecond keep the copy the
// user is looking at.
func Progress(local, remote *models.ProgressRecord) (*models.ProgressRecord, Source) {
	switch {
	case local == nil && remote == nil:
		return nil, SourceLocal
	case remote == nil:
		return local, SourceLocal
	case local == nil:
		return remote, SourceRemote
	case local.LastUpdated >= remote.LastUpdated:
		return local, SourceLocal
	default:
		return remote, SourceRemote
	}
}

// MergeOrder merges a remote and a local order list. The remote list, when
// non-empty, is the base; local-only ids are appended in their local order.
// No id is ever dropped and duplicates collapse to their first occurrence.
func MergeOrder(remote, local []string) []string {
	if len(remote) == 0 {
		return dedupe(local)
	}

	merged := dedupe(remote)
	seen := make(map[string]bool, len(merged))
	for _, id := range merged {
		seen[id] = true
	}
	for _, id := range local {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	return merged
}

// CompleteOrder appends catalog ids missing from the stored order, in
// catalog-iteration order, so that every catalog id appears exactly once.
// Ids in the order that no longer exist in the catalog are retained; they are
// harmless and disappear when the order is next saved after a removal.
func CompleteOrder(order, catalogIDs []string) []string {
	completed := dedupe(order)
	seen := make(map[string]bool, len(completed))
	for _, id := range completed {
		seen[id] = true
	}
	for _, id := range catalogIDs {
		if !seen[id] {
			seen[id] = true
			completed = append(completed, id)
		}
	}
	return completed
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
