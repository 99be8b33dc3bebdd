package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"german-reading-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	completedKey   = "progress:completed"
	performanceKey = "progress:performance"
)

// ProgressStore keeps learner progress in Redis.
// Completed readings live in a sorted set scored by first completion time
// (ZADD NX keeps the first), the history in a list of JSON entries.
type ProgressStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client, now: time.Now}
}

func (s *ProgressStore) Load(ctx context.Context) (domain.Progress, error) {
	completed, err := s.client.ZRange(ctx, completedKey, 0, -1).Result()
	if err != nil {
		return domain.Progress{}, fmt.Errorf("load completed readings: %w", err)
	}
	rawEntries, err := s.client.LRange(ctx, performanceKey, 0, -1).Result()
	if err != nil {
		return domain.Progress{}, fmt.Errorf("load performance: %w", err)
	}

	progress := domain.Progress{CompletedReadings: completed}
	for _, raw := range rawEntries {
		var entry domain.PerformanceEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return domain.Progress{}, fmt.Errorf("decode performance entry: %w", err)
		}
		progress.Performance = append(progress.Performance, entry)
	}
	return progress, nil
}

func (s *ProgressStore) Record(ctx context.Context, entry domain.PerformanceEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAddNX(ctx, completedKey, redis.Z{
			Score:  float64(s.now().UnixNano()),
			Member: entry.ReadingID,
		})
		pipe.RPush(ctx, performanceKey, raw)
		return nil
	})
	return err
}
