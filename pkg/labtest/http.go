package labtest

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
	r.HandleFunc("/lab-tests", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/lab-tests", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/lab-tests/{id}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/lab-tests/{id}", h.handleUpdate).Methods(http.MethodPut)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	pageSize := parseInt(query.Get("pageSize"), 50)

	tests, err := h.service.List(r.Context(), query.Get("status"), page, pageSize)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list lab tests")
		http.Error(w, "failed to list lab tests", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": tests})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	test, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			http.Error(w, "lab test not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to get lab test")
		http.Error(w, "failed to get lab test", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"labTest": test})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form models.LabTestForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if form.CaseID == "" || form.TestType == "" {
		http.Error(w, "caseId and testType are required", http.StatusBadRequest)
		return
	}

	test, err := h.service.Create(r.Context(), form, resolveActor(r))
	if err != nil {
		logger.Log.WithError(err).Error("failed to create lab test")
		http.Error(w, "failed to create lab test", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"labTest": test})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var form models.LabTestForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if form.TestType == "" {
		http.Error(w, "testType is required", http.StatusBadRequest)
		return
	}

	test, err := h.service.Update(r.Context(), mux.Vars(r)["id"], form, resolveActor(r))
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			http.Error(w, "lab test not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update lab test")
		http.Error(w, "failed to update lab test", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"labTest": test})
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
