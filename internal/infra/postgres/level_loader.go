package postgres

import (
	"context"
	"fmt"

	"german-reading-quiz/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// LevelLoader loads reading JSONB rows from Postgres, one row per reading.
type LevelLoader struct {
	pool *pgxpool.Pool
}

func NewLevelLoader(pool *pgxpool.Pool) *LevelLoader {
	return &LevelLoader{pool: pool}
}

func (l *LevelLoader) LoadLevel(ctx context.Context, level string) (domain.Level, error) {
	rows, err := l.pool.Query(ctx, `SELECT key, data FROM readings WHERE level=$1`, level)
	if err != nil {
		return domain.Level{}, fmt.Errorf("load level: %w", err)
	}
	defer rows.Close()

	lvl := domain.Level{Name: level, Readings: make(map[string]domain.ReadingContent)}
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return domain.Level{}, fmt.Errorf("scan reading: %w", err)
		}
		content, err := domain.ParseReadingContent(raw)
		if err != nil {
			return domain.Level{}, fmt.Errorf("reading %s: %w", domain.ReadingID(level, key), err)
		}
		lvl.Readings[key] = content
	}
	if err := rows.Err(); err != nil {
		return domain.Level{}, fmt.Errorf("load level: %w", err)
	}
	if len(lvl.Readings) == 0 {
		return domain.Level{}, domain.ErrLevelNotFound
	}
	return lvl, nil
}
