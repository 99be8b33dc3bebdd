package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"german-reading-quiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// LevelLoader fetches level content from a backing store (files, Postgres).
type LevelLoader interface {
	LoadLevel(ctx context.Context, level string) (domain.Level, error)
}

// LevelRepository caches levels with TTL to avoid re-reading the backing store.
type LevelRepository struct {
	loader LevelLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedLevel
}

type cachedLevel struct {
	level     domain.Level
	expiresAt time.Time
}

func NewLevelRepository(loader LevelLoader, ttl time.Duration) *LevelRepository {
	return &LevelRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedLevel),
	}
}

func (r *LevelRepository) GetLevel(ctx context.Context, level string) (domain.Level, error) {
	if lvl, ok := r.cached(level); ok {
		return lvl, nil
	}

	result, err, _ := r.sf.Do(level, func() (interface{}, error) {
		if lvl, ok := r.cached(level); ok {
			return lvl, nil
		}

		lvl, err := r.loader.LoadLevel(ctx, level)
		if err != nil {
			return domain.Level{}, err
		}

		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[level] = cachedLevel{level: lvl, expiresAt: expiresAt}
		r.mu.Unlock()
		return lvl, nil
	})
	if err != nil {
		return domain.Level{}, err
	}
	return result.(domain.Level), nil
}

func (r *LevelRepository) cached(level string) (domain.Level, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[level]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Level{}, false
	}
	return entry.level, true
}

func (r *LevelRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticLevelLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticLevelLoader struct {
	levels map[string]domain.Level
}

func NewStaticLevelLoader(levels map[string]domain.Level) *StaticLevelLoader {
	return &StaticLevelLoader{levels: levels}
}

func (l *StaticLevelLoader) LoadLevel(_ context.Context, level string) (domain.Level, error) {
	if lvl, ok := l.levels[level]; ok {
		return lvl, nil
	}
	return domain.Level{}, domain.ErrLevelNotFound
}
