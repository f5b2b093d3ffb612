package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/floodwatch/apiserver/types"
)

// ReportRepository handles persistence for disaster reports.
type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report types.Report) (types.Report, error) {
	report.CreatedAt = time.Now()

	const query = `
		INSERT INTO reports (user_id, disaster_type, title, description, location, contact_info, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		report.UserID,
		report.DisasterType,
		report.Title,
		report.Description,
		report.Location,
		report.ContactInfo,
		report.ImageURL,
		report.CreatedAt,
	).Scan(&report.ID); err != nil {
		return types.Report{}, err
	}
	return report, nil
}

// List returns all reports, newest first.
func (r *ReportRepository) List(ctx context.Context) ([]types.Report, error) {
	const query = `
		SELECT id, user_id, disaster_type, title, description, location,
			COALESCE(contact_info, ''), COALESCE(image_url, ''), created_at
		FROM reports
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []types.Report{}
	for rows.Next() {
		var report types.Report
		if err := rows.Scan(
			&report.ID,
			&report.UserID,
			&report.DisasterType,
			&report.Title,
			&report.Description,
			&report.Location,
			&report.ContactInfo,
			&report.ImageURL,
			&report.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
