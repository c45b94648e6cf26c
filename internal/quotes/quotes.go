// Package quotes persists completed quote calculations and exports them
// for the sales team.
package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Quote is a completed calculation as shown on the final screen.
type Quote struct {
	ID            int64
	UserID        int64
	District      string
	Depth         int
	EquipmentSet  string
	Equipment     []string
	Services      []string
	DrillingCost  int
	EquipmentCost int
	ServicesCost  int
	TotalCost     int
	CreatedAt     time.Time
}

// Store keeps quote history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at path and runs migrations.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		district TEXT NOT NULL,
		depth INTEGER NOT NULL,
		equipment_set TEXT,
		equipment TEXT,
		services TEXT,
		drilling_cost INTEGER NOT NULL,
		equipment_cost INTEGER NOT NULL,
		services_cost INTEGER NOT NULL,
		total_cost INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("migrate quotes: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_quotes_user ON quotes(user_id, created_at)`); err != nil {
		return nil, fmt.Errorf("migrate quotes index: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save inserts a quote and fills in its ID and CreatedAt.
func (s *Store) Save(ctx context.Context, q *Quote) error {
	equipment, err := json.Marshal(q.Equipment)
	if err != nil {
		return fmt.Errorf("encode equipment: %w", err)
	}
	services, err := json.Marshal(q.Services)
	if err != nil {
		return fmt.Errorf("encode services: %w", err)
	}

	q.CreatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `INSERT INTO quotes
		(user_id, district, depth, equipment_set, equipment, services,
		 drilling_cost, equipment_cost, services_cost, total_cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.UserID, q.District, q.Depth, q.EquipmentSet, string(equipment), string(services),
		q.DrillingCost, q.EquipmentCost, q.ServicesCost, q.TotalCost, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	q.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("quote id: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent quotes, newest first.
func (s *Store) ListByUser(ctx context.Context, userID int64, limit int) ([]Quote, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, user_id, district, depth, equipment_set, equipment, services,
		drilling_cost, equipment_cost, services_cost, total_cost, created_at
		FROM quotes WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		var q Quote
		var equipment, services string
		if err := rows.Scan(&q.ID, &q.UserID, &q.District, &q.Depth, &q.EquipmentSet,
			&equipment, &services, &q.DrillingCost, &q.EquipmentCost, &q.ServicesCost,
			&q.TotalCost, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		_ = json.Unmarshal([]byte(equipment), &q.Equipment)
		_ = json.Unmarshal([]byte(services), &q.Services)
		out = append(out, q)
	}
	return out, rows.Err()
}
