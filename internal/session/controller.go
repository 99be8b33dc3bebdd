// Package session drives one learner through rounds of reading, answering
// and reviewing results against the reading service.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"german-reading-quiz/internal/domain"
	"german-reading-quiz/internal/quiz"
)

// API is the reading service as seen by the controller.
type API interface {
	FetchReading(ctx context.Context, level string) (domain.Reading, bool, error)
	FetchQuestions(ctx context.Context, readingID string) ([]domain.Question, error)
	Submit(ctx context.Context, readingID string, answers domain.AnswerMap) (domain.ResultSet, error)
}

// Phase is the controller's state.
type Phase int

const (
	// Idle: no round, either before the first Start or after the reading fetch failed.
	Idle Phase = iota
	Loading
	// Completed: the service has no unread readings left at this level.
	Completed
	InProgress
	Submitted
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Completed:
		return "completed"
	case InProgress:
		return "in-progress"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

var (
	// ErrBusy is returned when a fetch or submission is already in flight.
	ErrBusy = errors.New("request already in flight")
	// ErrNoRound is returned when answering or submitting without a quiz.
	ErrNoRound = errors.New("no quiz in progress")
	// ErrIncomplete is returned when submitting before every question is answered.
	ErrIncomplete = errors.New("not every question is answered")
	// ErrAlreadySubmitted is returned once a round holds its results.
	ErrAlreadySubmitted = errors.New("round already submitted")
	// ErrNotSubmitted is returned when moving on before submitting.
	ErrNotSubmitted = errors.New("round not submitted yet")
)

// Stage names the request that failed.
type Stage string

const (
	StageReading   Stage = "reading"
	StageQuestions Stage = "questions"
	StageSubmit    Stage = "submit"
)

// Failure wraps a failed service call. The controller stays usable after one.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	switch f.Stage {
	case StageSubmit:
		return "error submitting quiz: " + f.Err.Error()
	default:
		return fmt.Sprintf("error fetching %s: %v", f.Stage, f.Err)
	}
}

func (f *Failure) Unwrap() error { return f.Err }

// round is everything discarded by Start.
type round struct {
	reading   *domain.Reading
	questions []domain.Question
	form      *quiz.Form
	results   *domain.ResultSet
}

// Controller owns the round lifecycle and is the only caller of the API.
type Controller struct {
	api    API
	level  string
	logger *log.Logger

	mu         sync.Mutex
	phase      Phase
	round      round
	submitting bool
}

func NewController(api API, level string, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{api: api, level: level, logger: logger}
}

// Phase reports the current state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Start discards the current round and loads a new one: one reading fetch and,
// unless the service reports completion, one question fetch for that reading.
// Failures are logged and returned as *Failure; the controller lands in Idle
// (no reading) or InProgress without questions (reading but no quiz).
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.phase == Loading || c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = Loading
	c.round = round{}
	c.mu.Unlock()

	reading, done, err := c.api.FetchReading(ctx, c.level)
	if err != nil {
		return c.fail(&Failure{Stage: StageReading, Err: err}, Idle)
	}
	if done {
		c.mu.Lock()
		c.phase = Completed
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.round.reading = &reading
	c.mu.Unlock()

	questions, err := c.api.FetchQuestions(ctx, reading.ID)
	if err != nil {
		return c.fail(&Failure{Stage: StageQuestions, Err: err}, InProgress)
	}

	c.mu.Lock()
	c.round.questions = questions
	if len(questions) > 0 {
		c.round.form = quiz.NewForm(questions)
	}
	c.phase = InProgress
	c.mu.Unlock()
	return nil
}

// Select records an answer for the current round.
func (c *Controller) Select(questionID int, option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.phase == Submitted:
		return quiz.ErrFormLocked
	case c.phase != InProgress || c.round.form == nil:
		return ErrNoRound
	case c.submitting:
		return ErrBusy
	}
	return c.round.form.Select(questionID, option)
}

// Submit sends the completed answer map for scoring. On failure the round
// stays in progress and may be submitted again.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.phase == Submitted:
		c.mu.Unlock()
		return ErrAlreadySubmitted
	case c.phase != InProgress || c.round.form == nil:
		c.mu.Unlock()
		return ErrNoRound
	case c.submitting:
		c.mu.Unlock()
		return ErrBusy
	case !c.round.form.CanSubmit():
		c.mu.Unlock()
		return ErrIncomplete
	}
	c.submitting = true
	readingID := c.round.reading.ID
	answers := c.round.form.Answers()
	c.mu.Unlock()

	results, err := c.api.Submit(ctx, readingID, answers)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		f := &Failure{Stage: StageSubmit, Err: err}
		c.logger.Printf("%v", f)
		return f
	}
	c.round.results = &results
	c.round.form.Lock(results)
	c.phase = Submitted
	return nil
}

// Next moves on after a submitted round. After completion it does nothing:
// there is nothing left to fetch. From Idle, or a round whose questions
// failed to load, it retries the load.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	phase, hasQuiz := c.phase, c.round.form != nil
	c.mu.Unlock()

	switch {
	case phase == Completed:
		return nil
	case phase == Loading:
		return ErrBusy
	case phase == InProgress && hasQuiz:
		return ErrNotSubmitted
	}
	return c.Start(ctx)
}

func (c *Controller) fail(f *Failure, phase Phase) error {
	c.logger.Printf("%v", f)
	c.mu.Lock()
	c.phase = phase
	c.mu.Unlock()
	return f
}
