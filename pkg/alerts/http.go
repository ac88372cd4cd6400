package alerts

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
	r.HandleFunc("/alerts", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{id}/respond", h.handleRespond).Methods(http.MethodPost)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	pageSize := parseInt(query.Get("pageSize"), 50)

	items, err := h.service.ListPending(r.Context(), page, pageSize)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list alerts")
		http.Error(w, "failed to list alerts", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) handleRespond(w http.ResponseWriter, r *http.Request) {
	var form models.AlertResponseForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if form.Action == "" {
		http.Error(w, "action is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Respond(r.Context(), mux.Vars(r)["id"], form, resolveActor(r)); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to respond to alert")
		http.Error(w, "failed to respond to alert", http.StatusBadGateway)
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
