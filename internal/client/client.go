package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"german-reading-quiz/internal/domain"
	"github.com/go-resty/resty/v2"
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client talks to the reading service under a base URL such as http://127.0.0.1:5000/api.
type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

type readingResponse struct {
	domain.Reading
	Message string `json:"message"`
}

type submitRequest struct {
	ReadingID string           `json:"readingId"`
	Answers   domain.AnswerMap `json:"answers"`
}

// FetchReading requests the next unread reading at level. done is true when
// the service answers with its "no more readings" marker instead of a reading.
func (c *Client) FetchReading(ctx context.Context, level string) (reading domain.Reading, done bool, err error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("level", level).
		Get("/reading/{level}")
	if err != nil {
		return domain.Reading{}, false, fmt.Errorf("fetch reading: %w", err)
	}
	var out readingResponse
	if err := decode("fetch reading", resp, &out); err != nil {
		return domain.Reading{}, false, err
	}
	if out.Message != "" {
		return domain.Reading{}, true, nil
	}
	return out.Reading, false, nil
}

// FetchQuestions requests the ordered question list of a reading.
func (c *Client) FetchQuestions(ctx context.Context, readingID string) ([]domain.Question, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("readingId", readingID).
		Get("/questions/{readingId}")
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	var questions []domain.Question
	if err := decode("fetch questions", resp, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Submit posts the answers of a reading for scoring.
func (c *Client) Submit(ctx context.Context, readingID string, answers domain.AnswerMap) (domain.ResultSet, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(submitRequest{ReadingID: readingID, Answers: answers}).
		Post("/submit")
	if err != nil {
		return domain.ResultSet{}, fmt.Errorf("submit answers: %w", err)
	}
	var results domain.ResultSet
	if err := decode("submit answers", resp, &results); err != nil {
		return domain.ResultSet{}, err
	}
	return results, nil
}

func decode(op string, resp *resty.Response, out any) error {
	if resp.IsError() {
		return &StatusError{Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
