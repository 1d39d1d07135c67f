package grouping

// groupStrict chains reads whose gap to the last read added to the open group
// is at most window seconds. Strict groups are contiguous runs of sorted, so
// they are returned as sub-slices.
func groupStrict(sorted []Record, window float64) [][]Record {
	var groups [][]Record
	start := 0
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Timestamp.Sub(sorted[i-1].Timestamp).Seconds()
		if gap > window {
			groups = append(groups, sorted[start:i])
			start = i
		}
	}
	if len(sorted) > 0 {
		groups = append(groups, sorted[start:])
	}
	return groups
}

// groupSimilar seeds a group with each unconsumed read and scans forward,
// folding unconsumed reads that are within window seconds of the seed and
// whose plate reaches threshold similarity with the seed's plate.
func groupSimilar(sorted []Record, window, threshold float64) [][]Record {
	plates := make([][]rune, len(sorted))
	for i, rec := range sorted {
		plates[i] = []rune(CanonicalPlate(rec.Plate))
	}
	consumed := make([]bool, len(sorted))

	var groups [][]Record
	for i, seed := range sorted {
		if consumed[i] {
			continue
		}
		consumed[i] = true
		group := []Record{seed}
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Timestamp.Sub(seed.Timestamp).Seconds() > window {
				break
			}
			if consumed[j] {
				continue
			}
			if runeSimilarity(plates[i], plates[j]) >= threshold {
				consumed[j] = true
				group = append(group, sorted[j])
			}
		}
		groups = append(groups, group)
	}
	return groups
}
