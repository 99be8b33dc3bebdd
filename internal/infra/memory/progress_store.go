package memory

import (
	"context"
	"sync"

	"german-reading-quiz/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore.
type ProgressStore struct {
	mu       sync.RWMutex
	progress domain.Progress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{}
}

func (s *ProgressStore) Load(_ context.Context) (domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Progress{
		CompletedReadings: append([]string(nil), s.progress.CompletedReadings...),
		Performance:       append([]domain.PerformanceEntry(nil), s.progress.Performance...),
	}, nil
}

func (s *ProgressStore) Record(_ context.Context, entry domain.PerformanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = s.progress.Append(entry)
	return nil
}
