package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"german-reading-quiz/internal/domain"
	"github.com/google/uuid"
)

// LevelRepository loads reading content for a level (from cache/backing store).
type LevelRepository interface {
	GetLevel(ctx context.Context, level string) (domain.Level, error)
}

// ProgressStore persists completed readings and scored submissions.
type ProgressStore interface {
	Load(ctx context.Context) (domain.Progress, error)
	// Record marks entry.ReadingID completed (once) and appends entry to the history.
	Record(ctx context.Context, entry domain.PerformanceEntry) error
}

const submissionMessage = "Submission successful!"

// ReadingService owns reading selection, question delivery and scoring.
type ReadingService struct {
	levels   LevelRepository
	progress ProgressStore
	feed     *ProgressFeed
	now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewReadingService(levels LevelRepository, progress ProgressStore, feed *ProgressFeed) *ReadingService {
	return NewReadingServiceWithSource(levels, progress, feed, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewReadingServiceWithSource is test-only for deterministic selection and timestamps.
func NewReadingServiceWithSource(levels LevelRepository, progress ProgressStore, feed *ProgressFeed, rnd *rand.Rand, now func() time.Time) *ReadingService {
	return &ReadingService{levels: levels, progress: progress, feed: feed, rnd: rnd, now: now}
}

// NextReading picks a random unread reading at level. When every reading has
// been completed it returns done=true and a zero Reading.
func (s *ReadingService) NextReading(ctx context.Context, level string) (reading domain.Reading, done bool, err error) {
	lvl, err := s.levels.GetLevel(ctx, level)
	if err != nil {
		return domain.Reading{}, false, err
	}
	progress, err := s.progress.Load(ctx)
	if err != nil {
		return domain.Reading{}, false, fmt.Errorf("load progress: %w", err)
	}
	completed := make(map[string]struct{}, len(progress.CompletedReadings))
	for _, id := range progress.CompletedReadings {
		completed[id] = struct{}{}
	}

	unread := make([]string, 0, len(lvl.Readings))
	for key := range lvl.Readings {
		if _, ok := completed[domain.ReadingID(level, key)]; !ok {
			unread = append(unread, key)
		}
	}
	if len(unread) == 0 {
		return domain.Reading{}, true, nil
	}
	// Map iteration order is random; sort so a seeded source is reproducible.
	sort.Strings(unread)

	s.mu.Lock()
	key := unread[s.rnd.Intn(len(unread))]
	s.mu.Unlock()

	content := lvl.Readings[key]
	return domain.Reading{
		ID:    domain.ReadingID(level, key),
		Title: content.Title,
		Text:  content.Text,
	}, false, nil
}

// Questions returns the comprehension then vocabulary questions of a reading, without answers.
func (s *ReadingService) Questions(ctx context.Context, readingID string) ([]domain.Question, error) {
	content, err := s.content(ctx, readingID)
	if err != nil {
		return nil, err
	}
	return content.AllQuestions(), nil
}

// Submit scores answers for a reading, records the result and publishes the new progress.
func (s *ReadingService) Submit(ctx context.Context, readingID string, answers domain.AnswerMap) (domain.ResultSet, error) {
	if len(answers) == 0 {
		return domain.ResultSet{}, domain.ErrNoAnswers
	}
	content, err := s.content(ctx, readingID)
	if err != nil {
		return domain.ResultSet{}, err
	}

	results, score, err := scoreAnswers(content.Answers, answers)
	if err != nil {
		return domain.ResultSet{}, err
	}
	total := len(content.Questions) + len(content.Vocabulary)

	entry := domain.PerformanceEntry{
		ID:             uuid.NewString(),
		ReadingID:      readingID,
		Score:          score,
		TotalQuestions: total,
		Results:        results,
		SubmittedAt:    s.now(),
	}
	if err := s.progress.Record(ctx, entry); err != nil {
		return domain.ResultSet{}, fmt.Errorf("record performance: %w", err)
	}
	s.publish(ctx, entry)

	return domain.ResultSet{
		Message: submissionMessage,
		Score:   score,
		Total:   total,
		Results: results,
	}, nil
}

// Progress returns the learner's completed readings and submission history.
func (s *ReadingService) Progress(ctx context.Context) (domain.Progress, error) {
	return s.progress.Load(ctx)
}

// Feed exposes the progress broadcast, nil when disabled.
func (s *ReadingService) Feed() *ProgressFeed {
	return s.feed
}

func (s *ReadingService) content(ctx context.Context, readingID string) (domain.ReadingContent, error) {
	level, key, err := domain.ParseReadingID(readingID)
	if err != nil {
		return domain.ReadingContent{}, err
	}
	lvl, err := s.levels.GetLevel(ctx, level)
	if err != nil {
		if errors.Is(err, domain.ErrLevelNotFound) {
			return domain.ReadingContent{}, domain.ErrReadingNotFound
		}
		return domain.ReadingContent{}, err
	}
	content, ok := lvl.Readings[key]
	if !ok {
		return domain.ReadingContent{}, domain.ErrReadingNotFound
	}
	return content, nil
}

func (s *ReadingService) publish(ctx context.Context, entry domain.PerformanceEntry) {
	if s.feed == nil {
		return
	}
	progress, err := s.progress.Load(ctx)
	if err != nil {
		log.Printf("publish progress: %v", err)
		return
	}
	s.feed.Publish(domain.ProgressSnapshot{
		CompletedReadings: len(progress.CompletedReadings),
		LastEntry:         &entry,
		UpdatedAt:         s.now(),
	})
}

// scoreAnswers compares each submitted answer with the key and returns (results, score).
func scoreAnswers(key map[int]string, answers domain.AnswerMap) (map[int]domain.QuestionResult, int, error) {
	results := make(map[int]domain.QuestionResult, len(answers))
	score := 0
	for questionID, answer := range answers {
		correct, ok := key[questionID]
		if !ok {
			return nil, 0, fmt.Errorf("question %d: %w", questionID, domain.ErrQuestionNotFound)
		}
		isCorrect := answer == correct
		if isCorrect {
			score++
		}
		results[questionID] = domain.QuestionResult{
			UserAnswer:    answer,
			CorrectAnswer: correct,
			IsCorrect:     isCorrect,
		}
	}
	return results, score, nil
}
