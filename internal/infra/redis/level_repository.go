package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"german-reading-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// LevelLoader fetches level content from a backing store (files, Postgres).
type LevelLoader interface {
	LoadLevel(ctx context.Context, level string) (domain.Level, error)
}

// LevelRepository caches whole levels in Redis and falls back to a loader on cache miss.
// Levels are stored as: SET level:{name} {json} EX ttl
type LevelRepository struct {
	client *redis.Client
	loader LevelLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLevelRepository(client *redis.Client, loader LevelLoader, ttl time.Duration) *LevelRepository {
	return &LevelRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *LevelRepository) GetLevel(ctx context.Context, level string) (domain.Level, error) {
	if lvl, ok := r.cached(ctx, level); ok {
		return lvl, nil
	}

	result, err, _ := r.sf.Do(level, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if lvl, ok := r.cached(ctx, level); ok {
			return lvl, nil
		}

		lvl, err := r.loader.LoadLevel(ctx, level)
		if err != nil {
			return domain.Level{}, err
		}

		if raw, err := json.Marshal(lvl); err == nil {
			_ = r.client.Set(ctx, r.key(level), raw, r.ttlWithJitter()).Err()
		}
		return lvl, nil
	})
	if err != nil {
		return domain.Level{}, err
	}
	return result.(domain.Level), nil
}

func (r *LevelRepository) cached(ctx context.Context, level string) (domain.Level, bool) {
	raw, err := r.client.Get(ctx, r.key(level)).Bytes()
	if err != nil {
		return domain.Level{}, false
	}
	var lvl domain.Level
	if err := json.Unmarshal(raw, &lvl); err != nil {
		return domain.Level{}, false
	}
	return lvl, true
}

func (r *LevelRepository) key(level string) string {
	return "level:" + level
}

func (r *LevelRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
