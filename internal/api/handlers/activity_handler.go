package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/tasktrack-be/internal/api/respond"
	"github.com/isdelr/tasktrack-be/internal/services"
)

// ActivityHandler serves the caller's activity log.
type ActivityHandler struct {
	service services.EventServiceProvider
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(service services.EventServiceProvider) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GetRecent handles the request to get recent activity/events.
func (h *ActivityHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0 // service default
	}

	events, err := h.service.Recent(r.Context(), identity(r).UserID, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, events, len(events))
}
