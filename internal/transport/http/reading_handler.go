package http

import (
	"encoding/json"
	"net/http"

	"german-reading-quiz/internal/app"
	"german-reading-quiz/internal/domain"
	"github.com/go-chi/chi/v5"
)

const completedMessage = "You have completed all readings for this level!"

type ReadingHandler struct {
	service *app.ReadingService
}

func NewReadingHandler(service *app.ReadingService) *ReadingHandler {
	return &ReadingHandler{service: service}
}

type completedPayload struct {
	Message string `json:"message"`
}

type submitRequest struct {
	ReadingID string           `json:"readingId"`
	Answers   domain.AnswerMap `json:"answers"`
}

// GetReading serves an unread reading or the completion marker.
func (h *ReadingHandler) GetReading(w http.ResponseWriter, r *http.Request) {
	reading, done, err := h.service.NextReading(r.Context(), chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, err)
		return
	}
	if done {
		writeJSON(w, http.StatusOK, completedPayload{Message: completedMessage})
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (h *ReadingHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Questions(r.Context(), chi.URLParam(r, "readingID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *ReadingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid submission payload"})
		return
	}
	results, err := h.service.Submit(r.Context(), req.ReadingID, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *ReadingHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Progress(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if progress.CompletedReadings == nil {
		progress.CompletedReadings = []string{}
	}
	if progress.Performance == nil {
		progress.Performance = []domain.PerformanceEntry{}
	}
	writeJSON(w, http.StatusOK, progress)
}
