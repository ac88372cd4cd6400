package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/gorilla/mux"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/audit", h.handleList).Methods(http.MethodGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	logs, err := h.repo.List(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list audit logs")
		http.Error(w, "failed to list audit logs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": logs})
}
