package handlers

import (
	"JackTrack/internal/service"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodySize — предел тела одной записи.
const maxBodySize = 1 << 20

// RecordHandler — REST-коллекции trees, flowers, fruits, users.
type RecordHandler struct {
	RecordService *service.RecordService
	Logger        *zap.SugaredLogger
}

func NewRecordHandler(s *service.RecordService, logger *zap.SugaredLogger) *RecordHandler {
	return &RecordHandler{RecordService: s, Logger: logger}
}

// envelope — формат ответа {success, data, error}.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку сервиса в HTTP-статус.
func (h *RecordHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnknownResource), errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrBadRecord):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrExists):
		status = http.StatusConflict
	default:
		h.Logger.Errorw("record handler failed", "method", r.Method, "uri", r.RequestURI, "error", err)
		writeJSON(w, status, envelope{Error: "internal error"})
		return
	}
	writeJSON(w, status, envelope{Error: err.Error()})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
}

// List GET /{resource}
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.RecordService.List(r.Context(), chi.URLParam(r, "resource"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Get GET /{resource}/{id}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.RecordService.Get(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Create POST /{resource}: 201, либо 409 если id уже есть.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.Logger.Warnw("Create: read body", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid request"})
		return
	}
	id, err := h.RecordService.Create(r.Context(), chi.URLParam(r, "resource"), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: map[string]string{"id": id}})
}

// Replace PUT /{resource}/{id}: 200, либо 404.
func (h *RecordHandler) Replace(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.Logger.Warnw("Replace: read body", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid request"})
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.RecordService.Replace(r.Context(), chi.URLParam(r, "resource"), id, body); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]string{"id": id}})
}

// Delete DELETE /{resource}/{id}: 204, либо 404.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.RecordService.Delete(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: "ok"})
}
