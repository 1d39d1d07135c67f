package grouping

import (
	"fmt"
	"slices"
)

// LoadAndSort returns the orderable reads sorted by ascending timestamp. The
// sort is stable, so reads sharing a timestamp keep their input order. Reads
// without a timestamp are returned as rejections instead.
func LoadAndSort(records []Record) ([]Record, []RejectedRecord) {
	sorted := make([]Record, 0, len(records))
	var rejected []RejectedRecord
	for i, rec := range records {
		if rec.Timestamp.IsZero() {
			rejected = append(rejected, RejectedRecord{
				Index: i,
				ID:    rec.ID,
				Err:   fmt.Errorf("%w: record has no timestamp", ErrMalformedTimestamp),
			})
			continue
		}
		sorted = append(sorted, rec)
	}
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted, rejected
}
