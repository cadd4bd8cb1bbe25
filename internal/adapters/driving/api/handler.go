package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Chat handles POST /v1/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.ports.Assistant.Invoke(r.Context(), req.ThreadID, req.Message)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{
		ThreadID: answer.ThreadID,
		Response: answer.Response,
		Category: answer.Category.String(),
	})
}

// GetThread handles GET /v1/threads/{id}.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.ports.Assistant.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, thread)
}

// DeleteThread handles DELETE /v1/threads/{id}.
func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	if err := h.ports.Assistant.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Retrieve handles POST /v1/retrieve.
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	if h.ports.Retriever == nil {
		respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "retrieval is not configured"})
		return
	}

	var req RetrieveRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.ports.Retriever.Retrieve(r.Context(), req.Query, req.TopN)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRetrieveResponse(result))
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed: " + err.Error()})
		return false
	}
	return true
}

// respondError maps domain errors to statuses.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.Error(err),
			zap.Int("status", status),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
	respondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// statusFor checks upstream failures before client errors, since a model
// or classification error may wrap an input error from deeper down.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrClassification), errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSearchUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
