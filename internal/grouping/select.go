package grouping

import "math"

// selectRepresentative folds a timestamp-ordered group into a Group. The
// representative is the read with the highest confidence; on equal confidence
// the lower position in the group wins.
func selectRepresentative(members []Record, order int) Group {
	best, bestPos := members[0], 0
	seen := make(map[string]struct{}, len(members))
	plates := make([]string, 0, len(members))
	ids := make([]int64, 0, len(members))
	earliest, latest := members[0].Timestamp, members[0].Timestamp

	for pos, rec := range members {
		if dominates(rec.Confidence, pos, best.Confidence, bestPos) {
			best, bestPos = rec, pos
		}
		plate := CanonicalPlate(rec.Plate)
		if _, ok := seen[plate]; !ok {
			seen[plate] = struct{}{}
			plates = append(plates, plate)
		}
		ids = append(ids, rec.ID)
		if rec.Timestamp.Before(earliest) {
			earliest = rec.Timestamp
		}
		if rec.Timestamp.After(latest) {
			latest = rec.Timestamp
		}
	}

	return Group{
		Representative: best,
		Members:        plates,
		Size:           len(members),
		TimeSpan:       roundTo(latest.Sub(earliest).Seconds(), 1),
		order:          order,
		ids:            ids,
	}
}

// dominates orders candidates by confidence, then by position ascending.
func dominates(conf float64, pos int, bestConf float64, bestPos int) bool {
	if conf != bestConf {
		return conf > bestConf
	}
	return pos < bestPos
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
