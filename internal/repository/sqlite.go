package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements the repositories plus the change feed over a local
// sqlite database.
type SQLiteDB struct {
	db   *sql.DB
	feed *changefeed
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db:   db,
		feed: newChangefeed(2, 128),
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

// StartFeed launches the change-notification dispatch workers.
func (s *SQLiteDB) StartFeed(ctx context.Context) {
	s.feed.start(ctx)
}

// SubscribeChanges registers a callback for one table's row changes.
func (s *SQLiteDB) SubscribeChanges(table string, fn func(ChangeEvent)) func() {
	return s.feed.SubscribeChanges(table, fn)
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS disasters (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			location_name TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			description TEXT,
			tags TEXT,
			severity TEXT NOT NULL,
			status TEXT NOT NULL,
			owner_id TEXT,
			audit_trail TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			disaster_id TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			location_name TEXT,
			latitude REAL,
			longitude REAL,
			quantity INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (disaster_id) REFERENCES disasters(id)
		);

		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			disaster_id TEXT NOT NULL,
			user_id TEXT,
			content TEXT NOT NULL,
			image_url TEXT,
			verification_status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (disaster_id) REFERENCES disasters(id)
		);

		CREATE INDEX IF NOT EXISTS idx_disasters_status ON disasters(status);
		CREATE INDEX IF NOT EXISTS idx_resources_disaster_id ON resources(disaster_id);
		CREATE INDEX IF NOT EXISTS idx_reports_disaster_id ON reports(disaster_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	s.feed.stop()
	return s.db.Close()
}
