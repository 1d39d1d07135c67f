package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"plate-events-service/internal/domain/anpr"
	"plate-events-service/internal/repository"
)

var errStore = errors.New("store unavailable")

type fakeStore struct {
	mu sync.Mutex

	reads   []repository.PlateRead
	created []anpr.Read
	err     error

	groupingLimit int
	lastSince     time.Time
	lastDay       time.Time
	lastCutoff    time.Time
	lastOffset    int
	lastLimit     int
}

func (f *fakeStore) CreateRead(_ context.Context, read *anpr.Read) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	read.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *read)
	return nil
}

func (f *fakeStore) CountReads(context.Context, anpr.ReadFilter) (int64, error) {
	return int64(len(f.reads)), f.err
}

func (f *fakeStore) ListReads(_ context.Context, _ anpr.ReadFilter, limit, offset int) ([]repository.PlateRead, error) {
	f.lastLimit, f.lastOffset = limit, offset
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.reads) {
		return nil, nil
	}
	return f.reads[offset:min(offset+limit, len(f.reads))], nil
}

func (f *fakeStore) FindReadsForGrouping(_ context.Context, _ anpr.ReadFilter, limit int) ([]repository.PlateRead, error) {
	f.groupingLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.reads) {
		return f.reads[:limit], nil
	}
	return f.reads, nil
}

func (f *fakeStore) DailyCounts(_ context.Context, since time.Time) ([]anpr.DailyCount, error) {
	f.lastSince = since
	return []anpr.DailyCount{{Date: "2024-03-14", Count: 4}}, f.err
}

func (f *fakeStore) HourlyCounts(_ context.Context, day time.Time) ([]anpr.HourlyCount, error) {
	f.lastDay = day
	return []anpr.HourlyCount{{Hour: 8, Count: 4}}, f.err
}

func (f *fakeStore) TopPlates(_ context.Context, since time.Time, limit int) ([]anpr.PlateFrequency, error) {
	f.lastSince, f.lastLimit = since, limit
	return []anpr.PlateFrequency{{Plate: "ABC123", Count: 3, AvgConfidence: 0.9}}, f.err
}

func (f *fakeStore) CountAll(context.Context) (int64, error) {
	return int64(len(f.reads)), nil
}

func (f *fakeStore) CountOnDate(context.Context, time.Time) (int64, error) {
	return 2, nil
}

func (f *fakeStore) CountDistinctPlates(context.Context) (int64, error) {
	return 1, nil
}

func (f *fakeStore) AverageConfidence(context.Context) (float64, error) {
	return 0.85, f.err
}

func (f *fakeStore) LastReadTime(context.Context) (*time.Time, error) {
	t := time.Date(2024, 3, 14, 8, 0, 10, 0, time.UTC)
	return &t, nil
}

func (f *fakeStore) DeleteReadsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCutoff = cutoff
	return 7, f.err
}
