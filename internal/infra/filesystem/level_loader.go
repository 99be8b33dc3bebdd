package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"german-reading-quiz/internal/domain"
)

// LevelLoader reads levels from <dir>/<level>.json.
type LevelLoader struct {
	dir string
}

func NewLevelLoader(dir string) *LevelLoader {
	return &LevelLoader{dir: dir}
}

func (l *LevelLoader) LoadLevel(_ context.Context, level string) (domain.Level, error) {
	if level == "" || strings.ContainsAny(level, `/\.`) {
		return domain.Level{}, domain.ErrLevelNotFound
	}
	data, err := os.ReadFile(filepath.Join(l.dir, level+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Level{}, domain.ErrLevelNotFound
	}
	if err != nil {
		return domain.Level{}, fmt.Errorf("read level %s: %w", level, err)
	}
	return domain.ParseLevel(level, data)
}
