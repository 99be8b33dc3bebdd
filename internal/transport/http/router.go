package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"german-reading-quiz/internal/app"
	"german-reading-quiz/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the reading API under /api, the progress websocket and health check.
func NewRouter(service *app.ReadingService, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	h := NewReadingHandler(service)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/reading/{level}", h.GetReading)
		r.Get("/questions/{readingID}", h.GetQuestions)
		r.Post("/submit", h.Submit)
		r.Get("/progress", h.GetProgress)
	})

	if feed := service.Feed(); feed != nil {
		r.Get("/ws/progress", NewWSHandler(feed).ServeWS)
	}
	return r
}

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError maps domain errors to status codes; anything unknown is a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLevelNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: "Invalid level"})
	case errors.Is(err, domain.ErrReadingNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: "Reading not found"})
	case errors.Is(err, domain.ErrInvalidReadingID),
		errors.Is(err, domain.ErrNoAnswers),
		errors.Is(err, domain.ErrQuestionNotFound):
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal error"})
	}
}
