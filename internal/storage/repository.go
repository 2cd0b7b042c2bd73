package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/filter"
	"github.com/zjgaokao/major-advisor/internal/major"
)

const majorColumns = `id, university, major_code, major_name, region, province,
	university_tier, university_level, university_type, major_category,
	schooling_length, tuition, subject_requirements,
	has_postgraduate_recommendation, estimated_ranking_2025, admission_probability`

// slowQuery is the threshold above which reads are logged.
const slowQuery = 100 * time.Millisecond

// Seed replaces the catalog with majors in one transaction. Dataset order
// becomes catalog order.
func (db *DB) Seed(ctx context.Context, majors []major.Major) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"admission_history", "majors"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	insertMajor, err := tx.PrepareContext(ctx, `
		INSERT INTO majors (`+majorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare major insert: %w", err)
	}
	defer func() { _ = insertMajor.Close() }()

	insertYear, err := tx.PrepareContext(ctx, `
		INSERT INTO admission_history (major_id, year, score, ranking)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer func() { _ = insertYear.Close() }()

	for i := range majors {
		m := &majors[i]
		id := i + 1
		pg := 0
		if m.HasPostgraduateRecommendation {
			pg = 1
		}
		if _, err := insertMajor.ExecContext(ctx,
			id, m.University, m.MajorCode, m.MajorName, m.Region, m.Province,
			m.UniversityTier, m.UniversityLevel, m.UniversityType, m.MajorCategory,
			m.SchoolingLength, nullInt(m.Tuition), nullText(m.SubjectRequirements),
			pg, nullInt(m.EstimatedRanking2025), nullInt(m.AdmissionProbability),
		); err != nil {
			return fmt.Errorf("failed to insert major %s: %w", m.Key(), err)
		}
		for _, yr := range m.History() {
			if _, err := insertYear.ExecContext(ctx, id, yr.Year, nullInt(yr.Score), nullInt(yr.Ranking)); err != nil {
				return fmt.Errorf("failed to insert %d history for %s: %w", yr.Year, m.Key(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

// ListMajors narrows by region, category, tier and schooling length in SQL,
// then applies filter.Match so tuition buckets and sentinels behave exactly
// as in memory.
func (db *DB) ListMajors(ctx context.Context, f major.Filter) ([]major.Major, error) {
	start := time.Now()
	where, args := prefilter(f)

	rows, err := db.conn.QueryContext(ctx, `SELECT `+majorColumns+` FROM majors`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query majors: %w", err)
	}
	ids, byID, err := scanMajors(rows)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		histRows, err := db.conn.QueryContext(ctx, `
			SELECT major_id, year, score, ranking FROM admission_history
			WHERE major_id IN (SELECT id FROM majors`+where+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query admission history: %w", err)
		}
		if err := scanHistory(histRows, byID); err != nil {
			return nil, err
		}
	}

	out := make([]major.Major, 0, len(ids))
	for _, id := range ids {
		if m := byID[id]; filter.Match(m, f) {
			out = append(out, *m)
		}
	}

	if d := time.Since(start); d > slowQuery {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "ListMajors",
			"duration_ms", d.Milliseconds(),
			"rows", len(ids))
	}
	return out, nil
}

// GetMajor returns one record by composite key.
func (db *DB) GetMajor(ctx context.Context, key major.Key) (*major.Major, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+majorColumns+` FROM majors WHERE university = ? AND major_code = ?`,
		key.University, key.MajorCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query major: %w", err)
	}
	ids, byID, err := scanMajors(rows)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperrors.NewNotFoundError(key.University, key.MajorCode)
	}

	histRows, err := db.conn.QueryContext(ctx,
		`SELECT major_id, year, score, ranking FROM admission_history WHERE major_id = ?`, ids[0])
	if err != nil {
		return nil, fmt.Errorf("failed to query admission history: %w", err)
	}
	if err := scanHistory(histRows, byID); err != nil {
		return nil, err
	}
	return byID[ids[0]], nil
}

// CountMajors returns the number of stored records.
func (db *DB) CountMajors(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM majors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count majors: %w", err)
	}
	return n, nil
}

// prefilter builds the SQL narrowing for f. Every clause is an exact match
// that filter.Match would also require, so it never drops a true match.
func prefilter(f major.Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	in := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		clauses = append(clauses, column+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")+")")
		for _, v := range values {
			args = append(args, v)
		}
	}
	eq := func(column, value string) {
		if major.IsUnconstrained(value) {
			return
		}
		clauses = append(clauses, column+" = ?")
		args = append(args, strings.TrimSpace(value))
	}

	in("region", f.Regions)
	in("major_category", f.MajorCategories)
	eq("university_tier", f.UniversityTier)
	eq("schooling_length", f.SchoolingLength)

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanMajors(rows *sql.Rows) ([]int64, map[int64]*major.Major, error) {
	defer func() { _ = rows.Close() }()

	var ids []int64
	byID := make(map[int64]*major.Major)
	for rows.Next() {
		var (
			id                       int64
			m                        major.Major
			tuition, estimated, prob sql.NullInt64
			requirements             sql.NullString
			postgraduate             int
		)
		if err := rows.Scan(&id, &m.University, &m.MajorCode, &m.MajorName, &m.Region, &m.Province,
			&m.UniversityTier, &m.UniversityLevel, &m.UniversityType, &m.MajorCategory,
			&m.SchoolingLength, &tuition, &requirements,
			&postgraduate, &estimated, &prob); err != nil {
			return nil, nil, fmt.Errorf("failed to scan major: %w", err)
		}
		m.Tuition = intPtr(tuition)
		m.EstimatedRanking2025 = intPtr(estimated)
		m.AdmissionProbability = intPtr(prob)
		if requirements.Valid {
			m.SubjectRequirements = major.String(requirements.String)
		}
		m.HasPostgraduateRecommendation = postgraduate != 0

		ids = append(ids, id)
		byID[id] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate majors: %w", err)
	}
	return ids, byID, nil
}

func scanHistory(rows *sql.Rows, byID map[int64]*major.Major) error {
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id, year       int64
			score, ranking sql.NullInt64
		)
		if err := rows.Scan(&id, &year, &score, &ranking); err != nil {
			return fmt.Errorf("failed to scan admission history: %w", err)
		}
		m, ok := byID[id]
		if !ok {
			continue
		}
		if !m.SetYear(int(year), intPtr(score), intPtr(ranking)) {
			return fmt.Errorf("admission history for %s: unsupported year %d", m.Key(), year)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate admission history: %w", err)
	}
	return nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullText(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
