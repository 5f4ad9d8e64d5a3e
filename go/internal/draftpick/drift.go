package draftpick

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftmirror/go/internal/models"
)

// Drift compares both mirrors against the authority. It only reads; nothing
// is repaired. A mirror that cannot be read is listed as unavailable and
// skipped, but an unreadable authority fails the report.
func (a *App) Drift(ctx context.Context) (*DriftReport, error) {
	canonical, err := a.authority.ListDraftPicks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read authority for drift report: %w", storeErr(StoreAuthority, err))
	}

	report := &DriftReport{
		CheckedAt:        a.clock.Now().UTC(),
		AuthorityCount:   len(canonical),
		MissingKeyValue:  []int64{},
		MissingObject:    []int64{},
		OrphanedKeyValue: []int64{},
		OrphanedObject:   []int64{},
		Mismatched:       []int64{},
		Unavailable:      []Store{},
	}

	byID := make(map[int64]models.DraftPick, len(canonical))
	for _, pick := range canonical {
		byID[pick.ID] = pick
	}
	mismatched := map[int64]bool{}

	if kvPicks, err := a.kv.ScanDraftPicks(ctx); err != nil {
		log.Warn().Err(err).Str("store", string(StoreKeyValue)).Msg("drift check skipped store")
		report.Unavailable = append(report.Unavailable, StoreKeyValue)
	} else {
		report.MissingKeyValue, report.OrphanedKeyValue = compare(byID, kvPicks, mismatched)
	}

	if objPicks, err := a.loadObjects(ctx); err != nil {
		log.Warn().Err(err).Str("store", string(StoreObject)).Msg("drift check skipped store")
		report.Unavailable = append(report.Unavailable, StoreObject)
	} else {
		report.MissingObject, report.OrphanedObject = compare(byID, objPicks, mismatched)
	}

	for id := range mismatched {
		report.Mismatched = append(report.Mismatched, id)
	}
	sort.Slice(report.Mismatched, func(i, j int) bool { return report.Mismatched[i] < report.Mismatched[j] })

	log.Info().
		Int("authority_count", report.AuthorityCount).
		Bool("in_sync", report.InSync()).
		Msg("drift report generated")

	return report, nil
}

// compare returns the canonical ids absent from copies and the copy ids
// absent from canonical. Ids present on both sides with different content
// are added to mismatched.
func compare(canonical map[int64]models.DraftPick, copies []models.DraftPick, mismatched map[int64]bool) (missing, orphaned []int64) {
	missing, orphaned = []int64{}, []int64{}

	seen := make(map[int64]bool, len(copies))
	for _, cp := range copies {
		seen[cp.ID] = true
		want, ok := canonical[cp.ID]
		if !ok {
			orphaned = append(orphaned, cp.ID)
			continue
		}
		if want != cp {
			mismatched[cp.ID] = true
		}
	}
	for id := range canonical {
		if !seen[id] {
			missing = append(missing, id)
		}
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	sort.Slice(orphaned, func(i, j int) bool { return orphaned[i] < orphaned[j] })
	return missing, orphaned
}
