package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

func (s *SQLiteDB) CreateReport(ctx context.Context, r *models.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, disaster_id, user_id, content, image_url, verification_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.DisasterID, r.UserID, r.Content, r.ImageURL, string(r.VerificationStatus), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting report: %w", err)
	}

	s.feed.notify(ChangeEvent{Op: ChangeInsert, Table: TableReports, New: rowMap(r)})
	return nil
}

func (s *SQLiteDB) ListReports(ctx context.Context, disasterID string) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, disaster_id, user_id, content, image_url, verification_status, created_at
		FROM reports WHERE disaster_id = ? ORDER BY created_at DESC`, disasterID)
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.DisasterID, &r.UserID, &r.Content, &r.ImageURL,
			(*string)(&r.VerificationStatus), &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteDB) UpdateReportStatus(ctx context.Context, id string, status models.VerificationStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reports SET verification_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("error updating report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	var r models.Report
	row := s.db.QueryRowContext(ctx, `
		SELECT id, disaster_id, user_id, content, image_url, verification_status, created_at
		FROM reports WHERE id = ?`, id)
	if err := row.Scan(&r.ID, &r.DisasterID, &r.UserID, &r.Content, &r.ImageURL,
		(*string)(&r.VerificationStatus), &r.CreatedAt); err != nil {
		return fmt.Errorf("error scanning report: %w", err)
	}

	s.feed.notify(ChangeEvent{Op: ChangeUpdate, Table: TableReports, New: rowMap(&r)})
	return nil
}
