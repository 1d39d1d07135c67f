package grouping

import "slices"

// rankGroups orders groups by representative timestamp, newest first. Groups
// with the same representative timestamp keep their formation order.
func rankGroups(groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := b.Representative.Timestamp.Compare(a.Representative.Timestamp); c != 0 {
			return c
		}
		return a.order - b.order
	})
}

// paginate returns groups[offset:offset+limit] clamped to the slice bounds.
func paginate(groups []Group, page, perPage int) []Group {
	if page-1 >= totalPages(len(groups), perPage) {
		return []Group{}
	}
	offset := (page - 1) * perPage
	end := min(offset+perPage, len(groups))
	return groups[offset:end]
}

// reductionPercentage is the share of reads removed by grouping, rounded to
// two decimals.
func reductionPercentage(groups, original int) float64 {
	if original <= 0 {
		return 0
	}
	return roundTo((1-float64(groups)/float64(original))*100, 2)
}

func totalPages(total, perPage int) int {
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return pages
}
