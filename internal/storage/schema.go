package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createMajorsTable(ctx, db); err != nil {
		return err
	}
	return createHistoryTable(ctx, db)
}

// majors.id preserves dataset order, which is the catalog order.
func createMajorsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS majors (
		id INTEGER PRIMARY KEY,
		university TEXT NOT NULL,
		major_code TEXT NOT NULL,
		major_name TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT '',
		province TEXT NOT NULL DEFAULT '',
		university_tier TEXT NOT NULL DEFAULT '',
		university_level TEXT NOT NULL DEFAULT '',
		university_type TEXT NOT NULL DEFAULT '',
		major_category TEXT NOT NULL DEFAULT '',
		schooling_length TEXT NOT NULL DEFAULT '',
		tuition INTEGER,
		subject_requirements TEXT,
		has_postgraduate_recommendation INTEGER NOT NULL DEFAULT 0,
		estimated_ranking_2025 INTEGER,
		admission_probability INTEGER CHECK(admission_probability BETWEEN 0 AND 100),
		UNIQUE(university, major_code)
	);
	CREATE INDEX IF NOT EXISTS idx_majors_region ON majors(region);
	CREATE INDEX IF NOT EXISTS idx_majors_category ON majors(major_category);
	CREATE INDEX IF NOT EXISTS idx_majors_tier ON majors(university_tier);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create majors table: %w", err)
	}
	return nil
}

func createHistoryTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS admission_history (
		major_id INTEGER NOT NULL REFERENCES majors(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		score INTEGER,
		ranking INTEGER,
		PRIMARY KEY (major_id, year)
	);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create admission_history table: %w", err)
	}
	return nil
}
