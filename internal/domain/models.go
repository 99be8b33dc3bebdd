package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Reading is a short passage presented to the learner.
// Text may embed simple inline markup such as <b>bold</b>.
type Reading struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// QuestionKind distinguishes comprehension prompts from vocabulary items.
type QuestionKind int

const (
	Comprehension QuestionKind = iota
	Vocabulary
)

func (k QuestionKind) String() string {
	switch k {
	case Comprehension:
		return "comprehension"
	case Vocabulary:
		return "vocabulary"
	default:
		return fmt.Sprintf("QuestionKind(%d)", int(k))
	}
}

// Question models a single-choice item. Prompt is set for comprehension
// questions, Word for vocabulary questions.
type Question struct {
	ID      int
	Kind    QuestionKind
	Prompt  string
	Word    string
	Options []string
}

type questionWire struct {
	ID       int      `json:"id"`
	Question string   `json:"question,omitempty"`
	Word     string   `json:"word,omitempty"`
	Options  []string `json:"options"`
}

// MarshalJSON emits the wire shape: "question" for comprehension, "word" for vocabulary.
func (q Question) MarshalJSON() ([]byte, error) {
	w := questionWire{ID: q.ID, Options: q.Options}
	if q.Kind == Vocabulary {
		w.Word = q.Word
	} else {
		w.Question = q.Prompt
	}
	return json.Marshal(w)
}

// UnmarshalJSON resolves the question kind once, from the presence of "word".
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*q = Question{ID: w.ID, Options: w.Options}
	if w.Word != "" {
		q.Kind = Vocabulary
		q.Word = w.Word
	} else {
		q.Kind = Comprehension
		q.Prompt = w.Question
	}
	return nil
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Validate checks the option list is non-empty and free of duplicates.
func (q Question) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("question %d: %w", q.ID, ErrNoOptions)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if _, dup := seen[o]; dup {
			return fmt.Errorf("question %d option %q: %w", q.ID, o, ErrDuplicateOption)
		}
		seen[o] = struct{}{}
	}
	return nil
}

// AnswerMap maps a question id to the selected option.
type AnswerMap map[int]string

// QuestionResult is the scored outcome for one question.
type QuestionResult struct {
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// ResultSet is the scored outcome of a submission.
type ResultSet struct {
	Message string                 `json:"message,omitempty"`
	Score   int                    `json:"score"`
	Total   int                    `json:"total"`
	Results map[int]QuestionResult `json:"results"`
}

// ReadingContent is a reading together with its questions and answer key.
type ReadingContent struct {
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Questions  []Question     `json:"questions"`
	Vocabulary []Question     `json:"vocabulary"`
	Answers    map[int]string `json:"answers"`
}

// AllQuestions returns comprehension questions followed by vocabulary items.
func (c ReadingContent) AllQuestions() []Question {
	all := make([]Question, 0, len(c.Questions)+len(c.Vocabulary))
	all = append(all, c.Questions...)
	all = append(all, c.Vocabulary...)
	return all
}

// Level is the set of readings at one difficulty level (e.g. "a1"), keyed by reading key.
type Level struct {
	Name     string                    `json:"name"`
	Readings map[string]ReadingContent `json:"readings"`
}

// ReadingID builds the public id of a reading, e.g. "a1_3".
func ReadingID(level, key string) string {
	return level + "_" + key
}

// ParseReadingID splits "a1_3" into level "a1" and key "3".
func ParseReadingID(id string) (level, key string, err error) {
	level, key, ok := strings.Cut(id, "_")
	if !ok || level == "" || key == "" {
		return "", "", fmt.Errorf("%q: %w", id, ErrInvalidReadingID)
	}
	return level, key, nil
}

// PerformanceEntry records one scored submission.
type PerformanceEntry struct {
	ID             string                 `json:"id"`
	ReadingID      string                 `json:"reading_id"`
	Score          int                    `json:"score"`
	TotalQuestions int                    `json:"total_questions"`
	Results        map[int]QuestionResult `json:"results"`
	SubmittedAt    time.Time              `json:"submitted_at"`
}

// Progress is the learner's accumulated history.
type Progress struct {
	CompletedReadings []string           `json:"completed_readings"`
	Performance       []PerformanceEntry `json:"performance"`
}

// Append marks entry's reading completed unless it already is and appends
// entry to the history.
func (p Progress) Append(entry PerformanceEntry) Progress {
	seen := false
	for _, id := range p.CompletedReadings {
		if id == entry.ReadingID {
			seen = true
			break
		}
	}
	if !seen {
		p.CompletedReadings = append(p.CompletedReadings, entry.ReadingID)
	}
	p.Performance = append(p.Performance, entry)
	return p
}

// ProgressSnapshot is pushed to feed subscribers after each submission.
type ProgressSnapshot struct {
	CompletedReadings int               `json:"completedReadings"`
	LastEntry         *PerformanceEntry `json:"lastEntry,omitempty"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}
