package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"plate-events-service/internal/domain/anpr"
	"plate-events-service/internal/utils"
)

const dateLayout = "2006-01-02"

type ReadsRepository struct {
	db *gorm.DB
}

func NewReadsRepository(db *gorm.DB) *ReadsRepository {
	return &ReadsRepository{db: db}
}

type PlateRead struct {
	ID              int64 `gorm:"primaryKey"`
	CameraID        string
	FrameNumber     *int64     `gorm:"column:frame_nmr"`
	VehicleID       *int64     `gorm:"column:car_id"`
	LicenseNumber   string     `gorm:"not null"`
	NormalizedPlate string     `gorm:"not null"`
	Score           float64    `gorm:"column:license_number_score"`
	DetectedAt      *time.Time `gorm:"column:data_hora"`
	RawPayload      datatypes.JSON
	CreatedAt       time.Time
}

func (PlateRead) TableName() string {
	return "plate_reads"
}

func (r *ReadsRepository) CreateRead(ctx context.Context, read *anpr.Read) error {
	detectedAt := read.DetectedAt
	dbRead := PlateRead{
		CameraID:        read.CameraID,
		FrameNumber:     read.FrameNumber,
		VehicleID:       read.VehicleID,
		LicenseNumber:   read.Plate,
		NormalizedPlate: read.NormalizedPlate,
		Score:           read.Confidence,
		DetectedAt:      &detectedAt,
		CreatedAt:       time.Now(),
	}

	if len(read.RawPayload) > 0 {
		raw, err := json.Marshal(read.RawPayload)
		if err != nil {
			return fmt.Errorf("encode raw payload: %w", err)
		}
		dbRead.RawPayload = datatypes.JSON(raw)
	}

	if err := r.db.WithContext(ctx).Create(&dbRead).Error; err != nil {
		return err
	}

	read.ID = dbRead.ID
	return nil
}

func applyFilter(query *gorm.DB, f anpr.ReadFilter) *gorm.DB {
	if f.Search != "" {
		query = query.Where("license_number ILIKE ?", "%"+utils.EscapeLike(f.Search)+"%")
	}
	if f.DateFrom != nil {
		query = query.Where("DATE(data_hora) >= ?", f.DateFrom.Format(dateLayout))
	}
	if f.DateTo != nil {
		query = query.Where("DATE(data_hora) <= ?", f.DateTo.Format(dateLayout))
	}
	return query
}

func (r *ReadsRepository) CountReads(ctx context.Context, f anpr.ReadFilter) (int64, error) {
	var total int64
	err := applyFilter(r.db.WithContext(ctx).Model(&PlateRead{}), f).Count(&total).Error
	return total, err
}

// ListReads returns one page of reads, newest first.
func (r *ReadsRepository) ListReads(ctx context.Context, f anpr.ReadFilter, limit, offset int) ([]PlateRead, error) {
	var reads []PlateRead
	err := listQuery(r.db.WithContext(ctx), f, limit, offset).Find(&reads).Error
	return reads, err
}

func listQuery(db *gorm.DB, f anpr.ReadFilter, limit, offset int) *gorm.DB {
	return applyFilter(db.Model(&PlateRead{}), f).
		Order("data_hora DESC NULLS LAST").
		Order("id DESC").
		Limit(limit).
		Offset(offset)
}

// FindReadsForGrouping returns the filtered reads oldest first. A positive
// limit caps the number of rows loaded.
func (r *ReadsRepository) FindReadsForGrouping(ctx context.Context, f anpr.ReadFilter, limit int) ([]PlateRead, error) {
	var reads []PlateRead
	err := groupingQuery(r.db.WithContext(ctx), f, limit).Find(&reads).Error
	return reads, err
}

func groupingQuery(db *gorm.DB, f anpr.ReadFilter, limit int) *gorm.DB {
	query := applyFilter(db.Model(&PlateRead{}), f).
		Order("data_hora ASC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}

func (r *ReadsRepository) DailyCounts(ctx context.Context, since time.Time) ([]anpr.DailyCount, error) {
	var rows []struct {
		Day   time.Time
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&PlateRead{}).
		Select("DATE(data_hora) AS day, COUNT(*) AS count").
		Where("data_hora >= ?", since).
		Group("DATE(data_hora)").
		Order("DATE(data_hora) DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]anpr.DailyCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, anpr.DailyCount{Date: row.Day.Format(dateLayout), Count: row.Count})
	}
	return result, nil
}

func (r *ReadsRepository) HourlyCounts(ctx context.Context, day time.Time) ([]anpr.HourlyCount, error) {
	var rows []struct {
		Hour  float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&PlateRead{}).
		Select("EXTRACT(hour FROM data_hora)::float8 AS hour, COUNT(*) AS count").
		Where("DATE(data_hora) = ?", day.Format(dateLayout)).
		Group("EXTRACT(hour FROM data_hora)").
		Order("EXTRACT(hour FROM data_hora)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]anpr.HourlyCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, anpr.HourlyCount{Hour: int(row.Hour), Count: row.Count})
	}
	return result, nil
}

func (r *ReadsRepository) TopPlates(ctx context.Context, since time.Time, limit int) ([]anpr.PlateFrequency, error) {
	var rows []anpr.PlateFrequency
	err := r.db.WithContext(ctx).
		Model(&PlateRead{}).
		Select("license_number AS plate, COUNT(*) AS count, COALESCE(AVG(license_number_score), 0) AS avg_confidence, MAX(data_hora) AS last_seen").
		Where("data_hora >= ?", since).
		Group("license_number").
		Order("COUNT(*) DESC").
		Order("license_number").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *ReadsRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&PlateRead{}).Count(&n).Error
	return n, err
}

func (r *ReadsRepository) CountOnDate(ctx context.Context, day time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&PlateRead{}).
		Where("DATE(data_hora) = ?", day.Format(dateLayout)).
		Count(&n).Error
	return n, err
}

func (r *ReadsRepository) CountDistinctPlates(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&PlateRead{}).
		Distinct("license_number").
		Count(&n).Error
	return n, err
}

func (r *ReadsRepository) AverageConfidence(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&PlateRead{}).
		Select("COALESCE(AVG(license_number_score), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *ReadsRepository) LastReadTime(ctx context.Context) (*time.Time, error) {
	var read PlateRead
	err := r.db.WithContext(ctx).
		Where("data_hora IS NOT NULL").
		Order("data_hora DESC").
		First(&read).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return read.DetectedAt, nil
}

// DeleteReadsBefore removes reads captured before cutoff and reports how many
// rows went away.
func (r *ReadsRepository) DeleteReadsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("data_hora < ?", cutoff).
		Delete(&PlateRead{})
	return res.RowsAffected, res.Error
}
