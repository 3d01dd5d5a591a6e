// Package api exposes the QA and SQL pipelines over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/nidhogg/parley/internal/bus"
	"github.com/nidhogg/parley/internal/domain"
	"github.com/nidhogg/parley/internal/notify"
	"github.com/nidhogg/parley/internal/service"
	"github.com/nidhogg/parley/internal/store"
	"go.uber.org/zap"
)

// ResponseStore hands back the notifications delivered for a request.
// The in-process memory sink satisfies it.
type ResponseStore interface {
	Fetch(destination string) []string
	Clear(destination string)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	bus       *bus.Bus
	responses ResponseStore
	store     *store.Store
	logger    *zap.Logger
}

// NewHandler creates the HTTP handler set. The store may be nil when
// persistence is disabled; the answers endpoint then returns 404s.
func NewHandler(b *bus.Bus, responses ResponseStore, st *store.Store, logger *zap.Logger) *Handler {
	return &Handler{bus: b, responses: responses, store: st, logger: logger}
}

// Routes builds the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Post("/answer", h.answer)
		r.Post("/sql", h.answerSQL)
		r.Get("/answers/{qID}", h.getAnswer)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	result := map[string]string{"status": "ok"}
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			result["status"] = "degraded"
			result["database"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, result)
			return
		}
		result["database"] = "ok"
	}
	writeJSON(w, http.StatusOK, result)
}

type answerRequest struct {
	Question string `json:"question"`
	QID      string `json:"q_id"`
}

type answerResponse struct {
	QID      string   `json:"q_id"`
	Messages []string `json:"messages"`
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.QID == "" {
		req.QID = uuid.New().String()
	}

	cmd := &domain.Question{Base: domain.Base{Question: req.Question, QID: req.QID}}
	if err := h.bus.Handle(r.Context(), cmd); err != nil {
		h.writeHandleError(w, req.QID, err)
		return
	}

	messages := h.responses.Fetch(req.QID)
	h.responses.Clear(req.QID)
	writeJSON(w, http.StatusOK, answerResponse{QID: req.QID, Messages: messages})
}

type sqlRequest struct {
	Question string             `json:"question"`
	QID      string             `json:"q_id"`
	Schema   *domain.SchemaInfo `json:"schema"`
}

func (h *Handler) answerSQL(w http.ResponseWriter, r *http.Request) {
	var req sqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.QID == "" {
		req.QID = uuid.New().String()
	}

	cmd := &domain.SQLQuestion{
		Base:   domain.Base{Question: req.Question, QID: req.QID},
		Schema: req.Schema,
	}
	if err := h.bus.Handle(r.Context(), cmd); err != nil {
		h.writeHandleError(w, req.QID, err)
		return
	}

	messages := h.responses.Fetch(req.QID)
	h.responses.Clear(req.QID)
	writeJSON(w, http.StatusOK, answerResponse{QID: req.QID, Messages: messages})
}

func (h *Handler) getAnswer(w http.ResponseWriter, r *http.Request) {
	qID := chi.URLParam(r, "qID")
	if h.store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "persistence disabled"})
		return
	}

	answer, err := h.store.GetAnswer(r.Context(), qID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "answer not found"})
		return
	}

	result := map[string]interface{}{"answer": answer}
	if evaluation, err := h.store.GetEvaluation(r.Context(), qID); err == nil {
		result["evaluation"] = evaluation
	}
	writeJSON(w, http.StatusOK, result)
}

// writeHandleError maps a validation failure to 400 and everything else,
// including pipeline faults, to 500.
func (h *Handler) writeHandleError(w http.ResponseWriter, qID string, err error) {
	h.logger.Error("request failed", zap.String("q_id", qID), zap.Error(err))
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrInvalidQuestion) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "q_id": qID})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var _ ResponseStore = (*notify.Memory)(nil)
