package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"plate-events-service/internal/domain/anpr"
	"plate-events-service/internal/repository"
	"plate-events-service/internal/utils"
)

const (
	dateLayout     = "2006-01-02"
	maxPerPage     = 500
	defaultPerPage = 50
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// ReadStore is the data access the service needs.
type ReadStore interface {
	CreateRead(ctx context.Context, read *anpr.Read) error
	CountReads(ctx context.Context, f anpr.ReadFilter) (int64, error)
	ListReads(ctx context.Context, f anpr.ReadFilter, limit, offset int) ([]repository.PlateRead, error)
	FindReadsForGrouping(ctx context.Context, f anpr.ReadFilter, limit int) ([]repository.PlateRead, error)
	DailyCounts(ctx context.Context, since time.Time) ([]anpr.DailyCount, error)
	HourlyCounts(ctx context.Context, day time.Time) ([]anpr.HourlyCount, error)
	TopPlates(ctx context.Context, since time.Time, limit int) ([]anpr.PlateFrequency, error)
	CountAll(ctx context.Context) (int64, error)
	CountOnDate(ctx context.Context, day time.Time) (int64, error)
	CountDistinctPlates(ctx context.Context) (int64, error)
	AverageConfidence(ctx context.Context) (float64, error)
	LastReadTime(ctx context.Context) (*time.Time, error)
	DeleteReadsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ReadsService struct {
	repo            ReadStore
	log             zerolog.Logger
	defaultCameraID string
	now             func() time.Time
}

func NewReadsService(repo ReadStore, defaultCameraID string, log zerolog.Logger) *ReadsService {
	return &ReadsService{
		repo:            repo,
		log:             log,
		defaultCameraID: defaultCameraID,
		now:             time.Now,
	}
}

func (s *ReadsService) ProcessIncomingRead(ctx context.Context, payload anpr.ReadPayload) (*anpr.ProcessResult, error) {
	if strings.TrimSpace(payload.Plate) == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}
	if math.IsNaN(payload.Confidence) || math.IsInf(payload.Confidence, 0) {
		return nil, fmt.Errorf("%w: confidence must be a finite number", ErrInvalidInput)
	}

	normalized := utils.NormalizePlate(payload.Plate)
	if normalized == "" {
		return nil, fmt.Errorf("%w: plate cannot be empty after normalization", ErrInvalidInput)
	}

	if payload.CameraID == "" {
		payload.CameraID = s.defaultCameraID
	}
	if payload.DetectedAt.IsZero() {
		payload.DetectedAt = s.now()
	}

	read := &anpr.Read{
		ReadPayload:     payload,
		NormalizedPlate: normalized,
	}
	if err := s.repo.CreateRead(ctx, read); err != nil {
		s.log.Error().
			Err(err).
			Str("plate", normalized).
			Str("camera_id", payload.CameraID).
			Msg("failed to create plate read")
		return nil, fmt.Errorf("failed to create plate read: %w", err)
	}

	s.log.Info().
		Int64("read_id", read.ID).
		Str("plate", normalized).
		Str("raw_plate", payload.Plate).
		Str("camera_id", payload.CameraID).
		Float64("confidence", payload.Confidence).
		Time("detected_at", payload.DetectedAt).
		Msg("saved plate read")

	return &anpr.ProcessResult{
		ReadID: read.ID,
		Plate:  normalized,
	}, nil
}

// ParseFilter validates the listing query parameters. Dates use YYYY-MM-DD.
func ParseFilter(search, dateFrom, dateTo string) (anpr.ReadFilter, error) {
	f := anpr.ReadFilter{Search: strings.TrimSpace(search)}
	if dateFrom != "" {
		t, err := time.Parse(dateLayout, dateFrom)
		if err != nil {
			return f, fmt.Errorf("%w: invalid date_from format", ErrInvalidInput)
		}
		f.DateFrom = &t
	}
	if dateTo != "" {
		t, err := time.Parse(dateLayout, dateTo)
		if err != nil {
			return f, fmt.Errorf("%w: invalid date_to format", ErrInvalidInput)
		}
		f.DateTo = &t
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, fmt.Errorf("%w: date_to is before date_from", ErrInvalidInput)
	}
	return f, nil
}

func (s *ReadsService) ListReads(ctx context.Context, f anpr.ReadFilter, page, perPage int) (*ReadPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", ErrInvalidInput)
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	total, err := s.repo.CountReads(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count reads: %w", err)
	}

	reads, err := s.repo.ListReads(ctx, f, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list reads: %w", err)
	}

	data := make([]ReadInfo, 0, len(reads))
	for _, r := range reads {
		data = append(data, toReadInfo(r))
	}

	return &ReadPage{
		Data:       data,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}, nil
}

// CleanupOldReads deletes reads older than the given number of days.
func (s *ReadsService) CleanupOldReads(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}
	cutoff := s.now().AddDate(0, 0, -days)
	deleted, err := s.repo.DeleteReadsBefore(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Int("days", days).Msg("failed to cleanup old reads")
		return 0, err
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted_count", deleted).Int("days", days).Msg("cleaned up old reads")
	}
	return deleted, nil
}

// RunRetention calls CleanupOldReads every interval until ctx is done.
func (s *ReadsService) RunRetention(ctx context.Context, days int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.CleanupOldReads(ctx, days); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("retention pass failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type ReadInfo struct {
	ID          int64      `json:"id"`
	FrameNumber *int64     `json:"frame_nmr"`
	VehicleID   *int64     `json:"car_id"`
	CameraID    string     `json:"camera_id,omitempty"`
	Plate       string     `json:"license_number"`
	Confidence  float64    `json:"license_number_score"`
	DetectedAt  *time.Time `json:"data_hora"`
}

type ReadPage struct {
	Data       []ReadInfo `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
}

func toReadInfo(r repository.PlateRead) ReadInfo {
	return ReadInfo{
		ID:          r.ID,
		FrameNumber: r.FrameNumber,
		VehicleID:   r.VehicleID,
		CameraID:    r.CameraID,
		Plate:       r.LicenseNumber,
		Confidence:  r.Score,
		DetectedAt:  r.DetectedAt,
	}
}
