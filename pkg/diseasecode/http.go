package diseasecode

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/platform"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/disease-codes", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/disease-codes", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/disease-codes/{id}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/disease-codes/{id}", h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/disease-codes/{id}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	pageSize := parseInt(query.Get("pageSize"), 50)

	result, err := h.service.List(r.Context(), query.Get("search"), page, pageSize)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list disease codes")
		http.Error(w, "failed to list disease codes", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			http.Error(w, "disease code not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to get disease code")
		http.Error(w, "failed to get disease code", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"diseaseCode": view})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form models.DiseaseCodeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if form.Code == "" || form.Name == "" {
		http.Error(w, "code and name are required", http.StatusBadRequest)
		return
	}

	view, err := h.service.Create(r.Context(), form, resolveActor(r))
	if err != nil {
		logger.Log.WithError(err).Error("failed to create disease code")
		http.Error(w, "failed to create disease code", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"diseaseCode": view})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var form models.DiseaseCodeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if form.Code == "" || form.Name == "" {
		http.Error(w, "code and name are required", http.StatusBadRequest)
		return
	}

	view, err := h.service.Update(r.Context(), mux.Vars(r)["id"], form, resolveActor(r))
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			http.Error(w, "disease code not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update disease code")
		http.Error(w, "failed to update disease code", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"diseaseCode": view})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"], resolveActor(r)); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			http.Error(w, "disease code not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to delete disease code")
		http.Error(w, "failed to delete disease code", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}

func resolveActor(r *http.Request) string {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "system"
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
