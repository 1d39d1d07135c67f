package anpr

import (
	"time"
)

// ReadPayload is one plate read as posted by a camera or OCR worker.
type ReadPayload struct {
	CameraID    string                 `json:"camera_id"`
	Plate       string                 `json:"plate"`
	Confidence  float64                `json:"confidence"`
	FrameNumber *int64                 `json:"frame_nmr,omitempty"`
	VehicleID   *int64                 `json:"car_id,omitempty"`
	DetectedAt  time.Time              `json:"detected_at"`
	RawPayload  map[string]interface{} `json:"raw_payload,omitempty"`
}

type Read struct {
	ID int64
	ReadPayload
	NormalizedPlate string
}

type ProcessResult struct {
	ReadID int64  `json:"read_id"`
	Plate  string `json:"plate"`
}

// ReadFilter narrows a listing. Dates are inclusive calendar days.
type ReadFilter struct {
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type HourlyCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

type PlateFrequency struct {
	Plate         string     `json:"license_number"`
	Count         int64      `json:"count"`
	AvgConfidence float64    `json:"avg_confidence"`
	LastSeen      *time.Time `json:"last_seen"`
}

type Overview struct {
	TotalReads    int64      `json:"total_reads"`
	TodayReads    int64      `json:"today_reads"`
	UniquePlates  int64      `json:"unique_plates"`
	AvgConfidence float64    `json:"avg_confidence"`
	LastRead      *time.Time `json:"last_read"`
}
