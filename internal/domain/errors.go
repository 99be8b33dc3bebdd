package domain

import "errors"

var (
	// ErrLevelNotFound is returned when no readings exist for a level.
	ErrLevelNotFound = errors.New("invalid level")
	// ErrInvalidReadingID is returned for ids not shaped like "level_key".
	ErrInvalidReadingID = errors.New("invalid reading id format")
	// ErrReadingNotFound indicates the reading key is absent from its level.
	ErrReadingNotFound = errors.New("reading not found")
	// ErrQuestionNotFound indicates an answer refers to an unknown question id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selected option is not one of the question's choices.
	ErrOptionNotFound = errors.New("option not found")
	// ErrNoAnswers is returned for a submission without answers.
	ErrNoAnswers = errors.New("no answers submitted")
	// ErrNoOptions rejects a question without choices.
	ErrNoOptions = errors.New("question has no options")
	// ErrDuplicateOption is returned when a question lists the same option twice.
	ErrDuplicateOption = errors.New("duplicate option")
)
