package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"plate-events-service/internal/domain/anpr"
)

func (s *ReadsService) DailyStats(ctx context.Context, days int) ([]anpr.DailyCount, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}
	counts, err := s.repo.DailyCounts(ctx, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	return counts, nil
}

// HourlyStats counts reads per hour of one calendar day. An empty date means
// today.
func (s *ReadsService) HourlyStats(ctx context.Context, date string) ([]anpr.HourlyCount, error) {
	day := s.now()
	if date != "" {
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date format", ErrInvalidInput)
		}
		day = t
	}
	counts, err := s.repo.HourlyCounts(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load hourly stats: %w", err)
	}
	return counts, nil
}

func (s *ReadsService) TopPlates(ctx context.Context, limit, days int) ([]anpr.PlateFrequency, error) {
	if limit <= 0 || days <= 0 {
		return nil, fmt.Errorf("%w: limit and days must be positive", ErrInvalidInput)
	}
	plates, err := s.repo.TopPlates(ctx, s.now().AddDate(0, 0, -days), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top plates: %w", err)
	}
	return plates, nil
}

// Overview runs the independent aggregates concurrently.
func (s *ReadsService) Overview(ctx context.Context) (*anpr.Overview, error) {
	var out anpr.Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TotalReads, err = s.repo.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TodayReads, err = s.repo.CountOnDate(gctx, s.now())
		return err
	})
	g.Go(func() (err error) {
		out.UniquePlates, err = s.repo.CountDistinctPlates(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.AvgConfidence, err = s.repo.AverageConfidence(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.LastRead, err = s.repo.LastReadTime(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("failed to build overview")
		return nil, fmt.Errorf("failed to build overview: %w", err)
	}
	return &out, nil
}
