package session

import (
	"german-reading-quiz/internal/domain"
	"german-reading-quiz/internal/quiz"
)

// Snapshot is a read-only copy of the controller state for rendering.
type Snapshot struct {
	Phase     Phase
	Reading   *domain.Reading
	Questions []QuestionView
	Answered  int
	Total     int
	CanSubmit bool
	Results   *domain.ResultSet
	// ShowNext is true once the round holds results.
	ShowNext bool
}

type QuestionView struct {
	Number  int
	ID      int
	Kind    domain.QuestionKind
	Prompt  string
	Options []OptionView
}

type OptionView struct {
	Letter   string
	Text     string
	Selected bool
	Label    quiz.Label
}

// Snapshot copies the current state; later transitions do not affect it.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{Phase: c.phase}
	if c.phase == Loading || c.phase == Completed {
		return s
	}
	if c.round.reading != nil {
		r := *c.round.reading
		s.Reading = &r
	}
	if c.round.results != nil {
		res := *c.round.results
		res.Results = make(map[int]domain.QuestionResult, len(c.round.results.Results))
		for id, qr := range c.round.results.Results {
			res.Results[id] = qr
		}
		s.Results = &res
		s.ShowNext = c.phase == Submitted
	}

	form := c.round.form
	if form == nil {
		return s
	}
	s.Answered = form.Answered()
	s.Total = form.Total()
	s.CanSubmit = form.CanSubmit() && !c.submitting
	for i, q := range form.Questions() {
		qv := QuestionView{
			Number: i + 1,
			ID:     q.ID,
			Kind:   q.Kind,
			Prompt: quiz.Prompt(q),
		}
		selected, _ := form.Answer(q.ID)
		for j, opt := range q.Options {
			qv.Options = append(qv.Options, OptionView{
				Letter:   quiz.Letter(j),
				Text:     opt,
				Selected: opt == selected,
				Label:    form.Label(q.ID, opt),
			})
		}
		s.Questions = append(s.Questions, qv)
	}
	return s
}
