package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

func (s *SQLiteDB) CreateResource(ctx context.Context, r *models.Resource) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (id, disaster_id, name, type, location_name, latitude, longitude, quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.DisasterID, r.Name, r.Type, r.LocationName, r.Latitude, r.Longitude, r.Quantity, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting resource: %w", err)
	}

	s.feed.notify(ChangeEvent{Op: ChangeInsert, Table: TableResources, New: rowMap(r)})
	return nil
}

func (s *SQLiteDB) ListResources(ctx context.Context, disasterID string) ([]models.Resource, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, disaster_id, name, type, location_name, latitude, longitude, quantity, created_at
		FROM resources WHERE disaster_id = ? ORDER BY created_at DESC`, disasterID)
	if err != nil {
		return nil, fmt.Errorf("error querying resources: %w", err)
	}
	defer rows.Close()

	var out []models.Resource
	for rows.Next() {
		var r models.Resource
		if err := rows.Scan(&r.ID, &r.DisasterID, &r.Name, &r.Type, &r.LocationName,
			&r.Latitude, &r.Longitude, &r.Quantity, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteDB) DeleteResource(ctx context.Context, id string) error {
	var r models.Resource
	row := s.db.QueryRowContext(ctx, `
		SELECT id, disaster_id, name, type, location_name, latitude, longitude, quantity, created_at
		FROM resources WHERE id = ?`, id)
	if err := row.Scan(&r.ID, &r.DisasterID, &r.Name, &r.Type, &r.LocationName,
		&r.Latitude, &r.Longitude, &r.Quantity, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return sql.ErrNoRows
		}
		return fmt.Errorf("error scanning resource: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting resource: %w", err)
	}

	s.feed.notify(ChangeEvent{Op: ChangeDelete, Table: TableResources, Old: rowMap(&r)})
	return nil
}
