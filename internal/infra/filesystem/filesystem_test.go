package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"german-reading-quiz/internal/domain"
)

const levelJSON = `{
  "1": {
    "title": "Der Hund",
    "text": "Ein <b>Hund</b> läuft.",
    "questions": [{"id": 1, "question": "What runs?", "options": ["Hund", "Katze", "Vogel", "Fisch"], "answer": "Hund"}],
    "vocabulary": [{"id": 6, "word": "laufen", "options": ["to run", "to eat", "to sleep", "to read"], "answer": "to run"}]
  }
}`

func TestLevelLoaderReadsLevelFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a1.json"), []byte(levelJSON), 0o644); err != nil {
		t.Fatalf("write level: %v", err)
	}
	loader := NewLevelLoader(dir)

	lvl, err := loader.LoadLevel(context.Background(), "a1")
	if err != nil {
		t.Fatalf("load level: %v", err)
	}
	content, ok := lvl.Readings["1"]
	if !ok || content.Title != "Der Hund" {
		t.Fatalf("expected reading 1, got %+v", lvl.Readings)
	}
	if content.Vocabulary[0].Kind != domain.Vocabulary {
		t.Fatalf("expected vocabulary kind")
	}

	for _, bad := range []string{"b2", "../a1", ""} {
		if _, err := loader.LoadLevel(context.Background(), bad); !errors.Is(err, domain.ErrLevelNotFound) {
			t.Fatalf("expected ErrLevelNotFound for %q, got %v", bad, err)
		}
	}
}

func TestProgressStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "usersdata", "user_performance.json")

	store := NewProgressStore(path)
	progress, err := store.Load(ctx)
	if err != nil || len(progress.CompletedReadings) != 0 {
		t.Fatalf("expected empty progress, got %+v err=%v", progress, err)
	}

	entry := domain.PerformanceEntry{ReadingID: "a1_1", Score: 1, TotalQuestions: 2}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("record again: %v", err)
	}

	reopened := NewProgressStore(path)
	progress, err = reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(progress.CompletedReadings) != 1 || len(progress.Performance) != 2 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestProgressStoreToleratesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_performance.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	progress, err := NewProgressStore(path).Load(context.Background())
	if err != nil || len(progress.Performance) != 0 {
		t.Fatalf("expected empty progress, got %+v err=%v", progress, err)
	}
}
