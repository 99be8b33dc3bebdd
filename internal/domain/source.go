package domain

import (
	"encoding/json"
	"fmt"
)

// sourceQuestion is the authoring format of a question, answer included.
type sourceQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Word     string   `json:"word"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type sourceReading struct {
	Title      string           `json:"title"`
	Text       string           `json:"text"`
	Questions  []sourceQuestion `json:"questions"`
	Vocabulary []sourceQuestion `json:"vocabulary"`
}

// ParseReadingContent decodes one reading in authoring format:
//
//	{"title": "...", "text": "...",
//	 "questions":  [{"id": 1, "question": "...", "options": [...], "answer": "..."}],
//	 "vocabulary": [{"id": 6, "word": "...", "options": [...], "answer": "..."}]}
func ParseReadingContent(data []byte) (ReadingContent, error) {
	var src sourceReading
	if err := json.Unmarshal(data, &src); err != nil {
		return ReadingContent{}, fmt.Errorf("decode reading: %w", err)
	}
	return src.content()
}

// ParseLevel decodes a level file: an object of reading key to reading.
func ParseLevel(name string, data []byte) (Level, error) {
	var raw map[string]sourceReading
	if err := json.Unmarshal(data, &raw); err != nil {
		return Level{}, fmt.Errorf("decode level %s: %w", name, err)
	}
	level := Level{Name: name, Readings: make(map[string]ReadingContent, len(raw))}
	for key, src := range raw {
		content, err := src.content()
		if err != nil {
			return Level{}, fmt.Errorf("level %s reading %s: %w", name, key, err)
		}
		level.Readings[key] = content
	}
	return level, nil
}

func (s sourceReading) content() (ReadingContent, error) {
	c := ReadingContent{
		Title:   s.Title,
		Text:    s.Text,
		Answers: make(map[int]string, len(s.Questions)+len(s.Vocabulary)),
	}
	add := func(sq sourceQuestion, kind QuestionKind) (Question, error) {
		q := Question{ID: sq.ID, Kind: kind, Options: sq.Options}
		if kind == Vocabulary {
			q.Word = sq.Word
		} else {
			q.Prompt = sq.Question
		}
		if err := q.Validate(); err != nil {
			return Question{}, err
		}
		if _, dup := c.Answers[sq.ID]; dup {
			return Question{}, fmt.Errorf("duplicate question id %d", sq.ID)
		}
		c.Answers[sq.ID] = sq.Answer
		return q, nil
	}
	for _, sq := range s.Questions {
		q, err := add(sq, Comprehension)
		if err != nil {
			return ReadingContent{}, err
		}
		c.Questions = append(c.Questions, q)
	}
	for _, sq := range s.Vocabulary {
		q, err := add(sq, Vocabulary)
		if err != nil {
			return ReadingContent{}, err
		}
		c.Vocabulary = append(c.Vocabulary, q)
	}
	return c, nil
}
