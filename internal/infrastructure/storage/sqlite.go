// Package storage persists chart annotations and viewport state in
// SQLite, keyed by pair symbol.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aynu/chartcore/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS drawings (
			id TEXT PRIMARY KEY,
			pair TEXT NOT NULL,
			type TEXT NOT NULL,
			p1_time INTEGER NOT NULL,
			p1_price REAL NOT NULL,
			p2_time INTEGER NOT NULL,
			p2_price REAL NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			locked BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_drawings_pair ON drawings(pair);`,
		`CREATE TABLE IF NOT EXISTS viewports (
			pair TEXT PRIMARY KEY,
			scroll_offset REAL NOT NULL,
			candle_width REAL NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// DrawingRepository implementation

func (s *SQLiteStore) SaveDrawing(ctx context.Context, d *domain.DrawingObject) error {
	query := `INSERT OR REPLACE INTO drawings (id, pair, type, p1_time, p1_price, p2_time, p2_price, color, locked, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Pair, string(d.Type), d.P1.Time, d.P1.Price, d.P2.Time, d.P2.Price, d.Color, d.Locked, time.Now())
	return err
}

func (s *SQLiteStore) ListDrawings(ctx context.Context, pair string) ([]domain.DrawingObject, error) {
	query := `SELECT id, pair, type, p1_time, p1_price, p2_time, p2_price, color, locked
			  FROM drawings WHERE pair = ? ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, pair)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drawings []domain.DrawingObject
	for rows.Next() {
		var d domain.DrawingObject
		var typ string
		if err := rows.Scan(&d.ID, &d.Pair, &typ, &d.P1.Time, &d.P1.Price, &d.P2.Time, &d.P2.Price, &d.Color, &d.Locked); err != nil {
			return nil, err
		}
		d.Type = domain.DrawingType(typ)
		drawings = append(drawings, d)
	}
	return drawings, rows.Err()
}

func (s *SQLiteStore) DeleteDrawing(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM drawings WHERE id = ?`, id)
	return err
}

// ViewportRepository implementation

func (s *SQLiteStore) SaveViewport(ctx context.Context, pair string, v domain.ViewportState) error {
	query := `INSERT INTO viewports (pair, scroll_offset, candle_width, updated_at) VALUES (?, ?, ?, ?)
			  ON CONFLICT(pair) DO UPDATE SET scroll_offset = excluded.scroll_offset, candle_width = excluded.candle_width, updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query, pair, v.Offset, v.CandleWidth, time.Now())
	return err
}

func (s *SQLiteStore) GetViewport(ctx context.Context, pair string) (*domain.ViewportState, error) {
	row := s.db.QueryRowContext(ctx, `SELECT scroll_offset, candle_width FROM viewports WHERE pair = ?`, pair)
	var v domain.ViewportState
	if err := row.Scan(&v.Offset, &v.CandleWidth); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
