// Package postgres disponibiliza a implementação do storage baseada em PostgreSQL.
//
// Cada mutação é um único statement: a atomicidade exigida pelos contratos
// (incremento e marcador com expiração) vem do próprio banco.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/kaificial/likes-service/internal/core/ports"
)

type Storage struct {
	db *sqlx.DB
}

var _ ports.Storage = (*Storage)(nil)

func New(dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// EnsureSchema cria as tabelas do serviço quando ainda não existem.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS like_counter (
			id SMALLINT PRIMARY KEY,
			count BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS like_markers (
			identity TEXT PRIMARY KEY,
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS like_window_events (
			key TEXT NOT NULL,
			at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS like_window_events_key_at_idx
			ON like_window_events (key, at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Storage) GetCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT count FROM like_counter WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get like count: %w", err)
	}
	return count, nil
}

func (s *Storage) IncrementCount(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO like_counter (id, count)
		VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET count = like_counter.count + 1
		RETURNING count
	`

	var count int64
	if err := s.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to increment like count: %w", err)
	}
	return count, nil
}

func (s *Storage) HasMarker(ctx context.Context, identity string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM like_markers
			WHERE identity = $1 AND expires_at > NOW()
		)
	`

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, identity); err != nil {
		return false, fmt.Errorf("failed to check like marker: %w", err)
	}
	return exists, nil
}

func (s *Storage) SetMarker(ctx context.Context, identity string, ttl time.Duration) error {
	query := `
		INSERT INTO like_markers (identity, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`

	if _, err := s.db.ExecContext(ctx, query, identity, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("failed to set like marker: %w", err)
	}
	return nil
}

func (s *Storage) CountWindow(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to begin window tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM like_window_events WHERE key = $1 AND at <= $2`, key, cutoff); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to prune window events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO like_window_events (key, at) VALUES ($1, $2)`, key, now); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to record window event: %w", err)
	}

	var result struct {
		Count  int64     `db:"count"`
		Oldest time.Time `db:"oldest"`
	}
	query := `SELECT COUNT(*) AS count, MIN(at) AS oldest FROM like_window_events WHERE key = $1`
	if err := tx.GetContext(ctx, &result, query, key); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count window events: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to commit window tx: %w", err)
	}

	return result.Count, result.Oldest, nil
}
