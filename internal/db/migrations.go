package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS plate_reads (
		id               BIGSERIAL PRIMARY KEY,
		camera_id        TEXT NOT NULL DEFAULT '',
		frame_nmr        BIGINT,
		car_id           BIGINT,
		license_number   TEXT NOT NULL,
		normalized_plate TEXT NOT NULL,
		license_number_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		data_hora        TIMESTAMPTZ,
		raw_payload      JSONB,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_plate_reads_data_hora ON plate_reads(data_hora);`,
	`CREATE INDEX IF NOT EXISTS idx_plate_reads_normalized_plate ON plate_reads(normalized_plate);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
