// Package syncer reconciles the device store with a remote snapshot
// endpoint: push the local collection, pull the authoritative one back and
// merge the two by id.
package syncer

import (
	"slices"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// Merge returns the union of local and remote keyed by id. On a conflict
// the remote record wins. The result is ordered with domain.NewestFirst and
// holds each id once; a repeated id within one side keeps its first copy.
//
// Merge is idempotent: Merge(a, Merge(a, b)) equals Merge(a, b).
func Merge(local, remote []domain.TourRecord) []domain.TourRecord {
	byID := make(map[string]domain.TourRecord, len(local)+len(remote))

	for _, r := range local {
		if _, ok := byID[r.ID]; !ok {
			byID[r.ID] = r
		}
	}

	fromRemote := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		if _, ok := fromRemote[r.ID]; ok {
			continue
		}
		fromRemote[r.ID] = struct{}{}
		byID[r.ID] = r
	}

	out := make([]domain.TourRecord, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	slices.SortFunc(out, domain.NewestFirst)
	return out
}
