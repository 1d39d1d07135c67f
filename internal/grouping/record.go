package grouping

import (
	"strings"
	"time"
)

// Record is one plate read as handed to the engine. FrameNumber, VehicleID and
// CameraID are carried through untouched.
type Record struct {
	ID          int64     `json:"id"`
	Plate       string    `json:"license_number"`
	Confidence  float64   `json:"license_number_score"`
	Timestamp   time.Time `json:"data_hora"`
	FrameNumber *int64    `json:"frame_nmr,omitempty"`
	VehicleID   *int64    `json:"car_id,omitempty"`
	CameraID    string    `json:"camera_id,omitempty"`
}

// Group is one vehicle-pass event.
type Group struct {
	Representative Record
	Members        []string
	Size           int
	TimeSpan       float64

	// order is the position in which the group was formed; used as the
	// ranking tie-breaker.
	order int
	// ids of every folded record, in timestamp order.
	ids []int64
}

// RecordIDs returns the ids of all reads folded into the group.
func (g Group) RecordIDs() []int64 {
	out := make([]int64, len(g.ids))
	copy(out, g.ids)
	return out
}

// CanonicalPlate uppercases and trims a plate string for comparison.
func CanonicalPlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
