package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"german-reading-quiz/internal/domain"
)

// ProgressStore keeps learner progress in a single indented JSON file.
// A missing or empty file reads as no progress.
type ProgressStore struct {
	path string
	mu   sync.Mutex
}

func NewProgressStore(path string) *ProgressStore {
	return &ProgressStore{path: path}
}

func (s *ProgressStore) Load(_ context.Context) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *ProgressStore) Record(_ context.Context, entry domain.PerformanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress, err := s.read()
	if err != nil {
		return err
	}
	return s.write(progress.Append(entry))
}

func (s *ProgressStore) read() (domain.Progress, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Progress{}, nil
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("read progress: %w", err)
	}
	var progress domain.Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		// A truncated or blank file starts over rather than wedging the service.
		return domain.Progress{}, nil
	}
	return progress, nil
}

func (s *ProgressStore) write(progress domain.Progress) error {
	data, err := json.MarshalIndent(progress, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return os.Rename(tmp, s.path)
}
