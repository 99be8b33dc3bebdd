package http

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"german-reading-quiz/internal/app"
	"german-reading-quiz/internal/domain"
	"german-reading-quiz/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestReadingRoundTrip(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), nil))
	defer server.Close()

	var reading domain.Reading
	getJSON(t, server.URL+"/api/reading/a1", http.StatusOK, &reading)
	if reading.ID != "a1_1" || reading.Title != "Der Hund" {
		t.Fatalf("unexpected reading %+v", reading)
	}

	var questions []map[string]any
	getJSON(t, server.URL+"/api/questions/a1_1", http.StatusOK, &questions)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if _, ok := questions[0]["question"]; !ok {
		t.Fatalf("expected comprehension prompt, got %v", questions[0])
	}
	if questions[1]["word"] != "laufen" {
		t.Fatalf("expected vocabulary word, got %v", questions[1])
	}
	for _, q := range questions {
		if _, leaked := q["answer"]; leaked {
			t.Fatalf("answer leaked in %v", q)
		}
	}

	body := `{"readingId":"a1_1","answers":{"1":"Hund","6":"to eat"}}`
	resp, err := http.Post(server.URL+"/api/submit", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var results domain.ResultSet
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if results.Score != 1 || results.Total != 2 || !results.Results[1].IsCorrect || results.Results[6].CorrectAnswer != "to run" {
		t.Fatalf("unexpected results %+v", results)
	}

	var completed map[string]string
	getJSON(t, server.URL+"/api/reading/a1", http.StatusOK, &completed)
	if completed["message"] != completedMessage {
		t.Fatalf("expected completion marker, got %v", completed)
	}

	var progress domain.Progress
	getJSON(t, server.URL+"/api/progress", http.StatusOK, &progress)
	if len(progress.CompletedReadings) != 1 || len(progress.Performance) != 1 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestErrorStatuses(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), nil))
	defer server.Close()

	var payload errorPayload
	getJSON(t, server.URL+"/api/reading/z9", http.StatusNotFound, &payload)
	if payload.Error != "Invalid level" {
		t.Fatalf("unexpected error %q", payload.Error)
	}
	getJSON(t, server.URL+"/api/questions/nounderscore", http.StatusBadRequest, &payload)
	getJSON(t, server.URL+"/api/questions/a1_77", http.StatusNotFound, &payload)

	cases := []struct {
		body string
		want int
	}{
		{`not json`, http.StatusBadRequest},
		{`{"readingId":"a1_1","answers":{}}`, http.StatusBadRequest},
		{`{"readingId":"a1_1","answers":{"9":"x"}}`, http.StatusBadRequest},
		{`{"readingId":"a1_5","answers":{"1":"x"}}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		resp, err := http.Post(server.URL+"/api/submit", "application/json", bytes.NewBufferString(tc.body))
		if err != nil {
			t.Fatalf("submit %s: %v", tc.body, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("body %s: expected %d, got %d", tc.body, tc.want, resp.StatusCode)
		}
	}
}

func TestProgressWebSocket(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, nil))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	initial := readProgress(t, conn)
	if initial.CompletedReadings != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial)
	}

	resp, err := http.Post(server.URL+"/api/submit", "application/json",
		strings.NewReader(`{"readingId":"a1_1","answers":{"1":"Hund"}}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	resp.Body.Close()

	update := readProgress(t, conn)
	if update.CompletedReadings != 1 || update.LastEntry == nil || update.LastEntry.Score != 1 {
		t.Fatalf("expected progress update, got %+v", update)
	}
}

func readProgress(t *testing.T, conn *websocket.Conn) domain.ProgressSnapshot {
	t.Helper()
	var msg struct {
		Type    string                  `json:"type"`
		Payload domain.ProgressSnapshot `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "progress" {
		t.Fatalf("expected progress message, got %s", msg.Type)
	}
	return msg.Payload
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("get %s: expected %d, got %d", url, wantStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func newTestService() *app.ReadingService {
	levels := memory.NewLevelRepository(memory.NewStaticLevelLoader(map[string]domain.Level{
		"a1": {
			Name: "a1",
			Readings: map[string]domain.ReadingContent{
				"1": {
					Title:      "Der Hund",
					Text:       "Ein <b>Hund</b> läuft.",
					Questions:  []domain.Question{{ID: 1, Kind: domain.Comprehension, Prompt: "What runs?", Options: []string{"Hund", "Katze", "Vogel", "Fisch"}}},
					Vocabulary: []domain.Question{{ID: 6, Kind: domain.Vocabulary, Word: "laufen", Options: []string{"to run", "to eat", "to sleep", "to read"}}},
					Answers:    map[int]string{1: "Hund", 6: "to run"},
				},
			},
		},
	}), time.Minute)
	return app.NewReadingServiceWithSource(levels, memory.NewProgressStore(), app.NewProgressFeed(),
		rand.New(rand.NewSource(1)), time.Now)
}
