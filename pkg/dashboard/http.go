package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/dashboard/overview", h.handleOverview).Methods(http.MethodGet)
}

// handleOverview always answers 200: every upstream failure has already been
// replaced with a zero or empty default inside the service.
func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview := h.service.Overview(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(overview)
}
