package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

func (s *SQLiteDB) CreateDisaster(ctx context.Context, d *models.Disaster) error {
	tags, _ := json.Marshal(d.Tags)
	audit, _ := json.Marshal(d.AuditTrail)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disasters (id, title, location_name, latitude, longitude, description, tags, severity, status, owner_id, audit_trail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.LocationName, d.Latitude, d.Longitude, d.Description,
		string(tags), string(d.Severity), string(d.Status), d.OwnerID, string(audit),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting disaster: %w", err)
	}

	s.feed.notify(ChangeEvent{Op: ChangeInsert, Table: TableDisasters, New: rowMap(d)})
	return nil
}

func (s *SQLiteDB) GetDisaster(ctx context.Context, id string) (*models.Disaster, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, location_name, latitude, longitude, description, tags, severity, status, owner_id, audit_trail, created_at, updated_at
		FROM disasters WHERE id = ?`, id)

	d, err := scanDisaster(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning disaster: %w", err)
	}
	return d, nil
}

func (s *SQLiteDB) ListDisasters(ctx context.Context, f Filter) ([]models.Disaster, error) {
	query := `
		SELECT id, title, location_name, latitude, longitude, description, tags, severity, status, owner_id, audit_trail, created_at, updated_at
		FROM disasters`
	var conds []string
	var args []any

	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Severity != "" {
		conds = append(conds, "severity = ?")
		args = append(args, string(f.Severity))
	}
	if f.Tag != "" {
		conds = append(conds, "tags LIKE ?")
		args = append(args, "%\""+f.Tag+"\"%")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying disasters: %w", err)
	}
	defer rows.Close()

	var out []models.Disaster
	for rows.Next() {
		d, err := scanDisaster(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning disaster: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ActiveDisasters is the production active-topic source for the push cycle.
func (s *SQLiteDB) ActiveDisasters(ctx context.Context) ([]models.Disaster, error) {
	return s.ListDisasters(ctx, Filter{Status: models.DisasterStatusActive})
}

func (s *SQLiteDB) UpdateDisaster(ctx context.Context, d *models.Disaster) error {
	tags, _ := json.Marshal(d.Tags)
	audit, _ := json.Marshal(d.AuditTrail)

	res, err := s.db.ExecContext(ctx, `
		UPDATE disasters
		SET title = ?, location_name = ?, latitude = ?, longitude = ?, description = ?, tags = ?, severity = ?, status = ?, audit_trail = ?, updated_at = ?
		WHERE id = ?`,
		d.Title, d.LocationName, d.Latitude, d.Longitude, d.Description,
		string(tags), string(d.Severity), string(d.Status), string(audit), d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating disaster: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	s.feed.notify(ChangeEvent{Op: ChangeUpdate, Table: TableDisasters, New: rowMap(d)})
	return nil
}

func (s *SQLiteDB) DeleteDisaster(ctx context.Context, id string) error {
	old, err := s.GetDisaster(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return sql.ErrNoRows
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM disasters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting disaster: %w", err)
	}

	s.feed.notify(ChangeEvent{Op: ChangeDelete, Table: TableDisasters, Old: rowMap(old)})
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDisaster(row rowScanner) (*models.Disaster, error) {
	var d models.Disaster
	var tags, audit string
	err := row.Scan(&d.ID, &d.Title, &d.LocationName, &d.Latitude, &d.Longitude,
		&d.Description, &tags, (*string)(&d.Severity), (*string)(&d.Status),
		&d.OwnerID, &audit, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tags != "" {
		_ = json.Unmarshal([]byte(tags), &d.Tags)
	}
	if audit != "" {
		_ = json.Unmarshal([]byte(audit), &d.AuditTrail)
	}
	return &d, nil
}
