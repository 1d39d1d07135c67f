package service

import (
	"context"
	"fmt"
	"time"

	"plate-events-service/internal/domain/anpr"
	"plate-events-service/internal/grouping"
	"plate-events-service/internal/repository"
)

type GroupedReadInfo struct {
	ReadInfo
	GroupSize     int      `json:"group_size"`
	GroupTimeSpan float64  `json:"group_time_span"`
	GroupPlates   []string `json:"group_plates"`
}

type GroupedPage struct {
	Data                []GroupedReadInfo `json:"data"`
	Total               int               `json:"total"`
	Page                int               `json:"page"`
	PerPage             int               `json:"per_page"`
	TotalPages          int               `json:"total_pages"`
	OriginalCount       int               `json:"original_count"`
	ReductionPercentage float64           `json:"reduction_percentage"`
	RejectedCount       int               `json:"rejected_count"`
	Policy              grouping.Policy   `json:"policy"`
	WindowSeconds       float64           `json:"window_seconds"`
	SimilarityThreshold float64           `json:"similarity_threshold"`
}

// GroupedReads loads the filtered reads and collapses them into vehicle-pass
// events. For the similarity policy at most one row past the ceiling is
// loaded, which is enough for the engine to refuse the batch.
func (s *ReadsService) GroupedReads(ctx context.Context, f anpr.ReadFilter, opts grouping.Options) (*GroupedPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxSimilarityBatch <= 0 {
		opts.MaxSimilarityBatch = grouping.DefaultMaxSimilarityBatch
	}
	if opts.PerPage > maxPerPage {
		opts.PerPage = maxPerPage
	}

	limit := 0
	if opts.Policy == grouping.PolicySimilarity {
		limit = opts.MaxSimilarityBatch + 1
	}

	reads, err := s.repo.FindReadsForGrouping(ctx, f, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reads for grouping: %w", err)
	}

	records := make([]grouping.Record, 0, len(reads))
	for _, r := range reads {
		records = append(records, toRecord(r))
	}

	started := time.Now()
	res, err := grouping.Run(records, opts)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("policy", string(opts.Policy)).
			Int("records", len(records)).
			Msg("grouping refused")
		return nil, err
	}

	for _, rej := range res.Rejected {
		s.log.Debug().Int64("read_id", rej.ID).Err(rej.Err).Msg("read left out of grouping")
	}
	s.log.Info().
		Str("policy", string(opts.Policy)).
		Float64("window_seconds", opts.WindowSeconds).
		Float64("similarity_threshold", opts.SimilarityThreshold).
		Int("original_count", res.OriginalCount).
		Int("groups", res.Total).
		Int("rejected", len(res.Rejected)).
		Dur("took", time.Since(started)).
		Msg("grouped plate reads")

	data := make([]GroupedReadInfo, 0, len(res.Groups))
	for _, g := range res.Groups {
		data = append(data, toGroupedReadInfo(g))
	}

	return &GroupedPage{
		Data:                data,
		Total:               res.Total,
		Page:                res.Page,
		PerPage:             res.PerPage,
		TotalPages:          res.TotalPages,
		OriginalCount:       res.OriginalCount,
		ReductionPercentage: res.ReductionPercentage,
		RejectedCount:       len(res.Rejected),
		Policy:              opts.Policy,
		WindowSeconds:       opts.WindowSeconds,
		SimilarityThreshold: opts.SimilarityThreshold,
	}, nil
}

func toRecord(r repository.PlateRead) grouping.Record {
	rec := grouping.Record{
		ID:          r.ID,
		Plate:       r.LicenseNumber,
		Confidence:  r.Score,
		FrameNumber: r.FrameNumber,
		VehicleID:   r.VehicleID,
		CameraID:    r.CameraID,
	}
	if r.DetectedAt != nil {
		rec.Timestamp = *r.DetectedAt
	}
	return rec
}

func toGroupedReadInfo(g grouping.Group) GroupedReadInfo {
	rep := g.Representative
	ts := rep.Timestamp
	return GroupedReadInfo{
		ReadInfo: ReadInfo{
			ID:          rep.ID,
			FrameNumber: rep.FrameNumber,
			VehicleID:   rep.VehicleID,
			CameraID:    rep.CameraID,
			Plate:       rep.Plate,
			Confidence:  rep.Confidence,
			DetectedAt:  &ts,
		},
		GroupSize:     g.Size,
		GroupTimeSpan: g.TimeSpan,
		GroupPlates:   g.Members,
	}
}
