// Package poll implements the candidate-date reconciler and the availability
// aggregator used for poll-style gigs.
package poll

import (
	"sort"
	"time"

	"github.com/bandroom/schedule"
)

// Reconcile diffs the desired candidate-date set against what is persisted.
// existing maps DateFormat date strings to record ids. The returned sets are
// disjoint by construction: a date already persisted is never created, a date
// still desired is never deleted. The caller executes the operations; nothing
// is mutated here.
func Reconcile(desired []time.Time, existing map[string]string) (toCreate []time.Time, toDelete []string) {
	want := make(map[string]time.Time, len(desired))
	for _, d := range desired {
		day := schedule.Day(d)
		want[day.Format(schedule.DateFormat)] = day
	}

	for key, day := range want {
		if _, ok := existing[key]; !ok {
			toCreate = append(toCreate, day)
		}
	}
	for key, id := range existing {
		if _, ok := want[key]; !ok {
			toDelete = append(toDelete, id)
		}
	}

	sort.Slice(toCreate, func(i, j int) bool { return toCreate[i].Before(toCreate[j]) })
	sort.Strings(toDelete)
	return toCreate, toDelete
}

// ExistingByDate indexes persisted candidate records the way Reconcile wants
// them.
func ExistingByDate(records []*schedule.CandidateDate) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		out[r.Date.Format(schedule.DateFormat)] = r.ID
	}
	return out
}
