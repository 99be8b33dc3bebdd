// Package quiz tracks a learner's answers to one reading's questions and,
// once results arrive, labels every option for display.
package quiz

import (
	"errors"
	"fmt"

	"german-reading-quiz/internal/domain"
)

// ErrFormLocked is returned when selecting after results were attached.
var ErrFormLocked = errors.New("quiz already submitted")

// Label is the post-submission annotation of an option.
type Label int

const (
	// LabelNone applies before results exist.
	LabelNone Label = iota
	LabelCorrect
	// LabelUserIncorrect marks the learner's wrong choice.
	LabelUserIncorrect
	// LabelIncorrect marks an option that was neither chosen nor correct.
	LabelIncorrect
)

func (l Label) String() string {
	switch l {
	case LabelCorrect:
		return "correct"
	case LabelUserIncorrect:
		return "user-incorrect"
	case LabelIncorrect:
		return "incorrect"
	default:
		return ""
	}
}

// Form holds the answer map for one question set. It is not safe for concurrent use.
type Form struct {
	questions []domain.Question
	byID      map[int]domain.Question
	answers   domain.AnswerMap
	results   *domain.ResultSet
}

// NewForm builds a form over questions. A repeated question id keeps its
// first occurrence so that every listed question can be answered.
func NewForm(questions []domain.Question) *Form {
	byID := make(map[int]domain.Question, len(questions))
	unique := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if _, dup := byID[q.ID]; dup {
			continue
		}
		byID[q.ID] = q
		unique = append(unique, q)
	}
	return &Form{
		questions: unique,
		byID:      byID,
		answers:   make(domain.AnswerMap, len(questions)),
	}
}

// Select records option as the single answer to questionID, replacing any earlier choice.
func (f *Form) Select(questionID int, option string) error {
	if f.results != nil {
		return ErrFormLocked
	}
	q, ok := f.byID[questionID]
	if !ok {
		return fmt.Errorf("question %d: %w", questionID, domain.ErrQuestionNotFound)
	}
	if !q.HasOption(option) {
		return fmt.Errorf("question %d option %q: %w", questionID, option, domain.ErrOptionNotFound)
	}
	f.answers[questionID] = option
	return nil
}

func (f *Form) Questions() []domain.Question { return f.questions }

func (f *Form) Answered() int { return len(f.answers) }

func (f *Form) Total() int { return len(f.questions) }

// CanSubmit reports whether every question has an answer.
func (f *Form) CanSubmit() bool {
	return f.results == nil && f.Total() > 0 && f.Answered() == f.Total()
}

// Answer returns the selected option for questionID, if any.
func (f *Form) Answer(questionID int) (string, bool) {
	a, ok := f.answers[questionID]
	return a, ok
}

// Answers returns a copy of the answer map.
func (f *Form) Answers() domain.AnswerMap {
	out := make(domain.AnswerMap, len(f.answers))
	for id, a := range f.answers {
		out[id] = a
	}
	return out
}

// Lock attaches results; the form rejects further selections afterwards.
func (f *Form) Lock(results domain.ResultSet) {
	f.results = &results
}

func (f *Form) Locked() bool { return f.results != nil }

// Label classifies option of questionID against the attached results.
func (f *Form) Label(questionID int, option string) Label {
	if f.results == nil {
		return LabelNone
	}
	res, ok := f.results.Results[questionID]
	if !ok {
		return LabelIncorrect
	}
	switch {
	case option == res.CorrectAnswer:
		return LabelCorrect
	case option == res.UserAnswer && !res.IsCorrect:
		return LabelUserIncorrect
	default:
		return LabelIncorrect
	}
}

// Letter returns the display letter of the option at index i: a, b, c, ...
func Letter(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return Letter(i/26-1) + Letter(i%26)
}

// Prompt renders a question's heading; vocabulary items use a fixed template.
func Prompt(q domain.Question) string {
	if q.Kind == domain.Vocabulary {
		return `"` + q.Word + `" means:`
	}
	return q.Prompt
}
