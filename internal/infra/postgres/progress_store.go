package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"german-reading-quiz/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProgressStore keeps learner progress in the completed_readings and performance tables.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

func (s *ProgressStore) Load(ctx context.Context) (domain.Progress, error) {
	var progress domain.Progress

	rows, err := s.pool.Query(ctx, `SELECT reading_id FROM completed_readings ORDER BY completed_at, reading_id`)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("load completed readings: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return domain.Progress{}, fmt.Errorf("scan completed reading: %w", err)
		}
		progress.CompletedReadings = append(progress.CompletedReadings, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Progress{}, fmt.Errorf("load completed readings: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT id::text, reading_id, score, total_questions, results, submitted_at
		FROM performance ORDER BY submitted_at, id`)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("load performance: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			entry   domain.PerformanceEntry
			results []byte
		)
		if err := rows.Scan(&entry.ID, &entry.ReadingID, &entry.Score, &entry.TotalQuestions, &results, &entry.SubmittedAt); err != nil {
			return domain.Progress{}, fmt.Errorf("scan performance: %w", err)
		}
		if err := json.Unmarshal(results, &entry.Results); err != nil {
			return domain.Progress{}, fmt.Errorf("decode results: %w", err)
		}
		progress.Performance = append(progress.Performance, entry)
	}
	return progress, rows.Err()
}

func (s *ProgressStore) Record(ctx context.Context, entry domain.PerformanceEntry) error {
	results, err := json.Marshal(entry.Results)
	if err != nil {
		return err
	}
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO completed_readings (reading_id, completed_at) VALUES ($1, $2) ON CONFLICT (reading_id) DO NOTHING`,
			entry.ReadingID, entry.SubmittedAt); err != nil {
			return fmt.Errorf("mark completed: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO performance (id, reading_id, score, total_questions, results, submitted_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			entry.ID, entry.ReadingID, entry.Score, entry.TotalQuestions, results, entry.SubmittedAt); err != nil {
			return fmt.Errorf("insert performance: %w", err)
		}
		return nil
	})
}
