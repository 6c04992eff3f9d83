package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/isdelr/tasktrack-be/internal/api/respond"
	"github.com/rs/zerolog/hlog"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and basic process figures.
type HealthHandler struct {
	store   Pinger
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

// HealthReport is the data of a health response.
type HealthReport struct {
	Status         string  `json:"status"`
	Store          string  `json:"store"`
	UptimeSeconds  float64 `json:"uptime"`
	HostUptime     uint64  `json:"hostUptime,omitempty"`
	MemoryRSSBytes uint64  `json:"memory,omitempty"`
}

// degradedResponse is the error envelope of a failed health check. It keeps
// the report so operators can see which part failed.
type degradedResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Data    HealthReport `json:"data"`
}

// Check pings the store and collects process statistics. An unreachable store
// answers 503.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := HealthReport{
		Status:        "ok",
		Store:         "ok",
		UptimeSeconds: time.Since(h.started).Seconds(),
	}

	if err := h.store.Ping(ctx); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Store ping failed")
		report.Status = "degraded"
		report.Store = "unreachable"
	}

	// Process figures are best effort; some platforms do not expose them.
	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
			report.MemoryRSSBytes = mem.RSS
		}
	}
	if uptime, err := host.UptimeWithContext(ctx); err == nil {
		report.HostUptime = uptime
	}

	if report.Status != "ok" {
		respond.JSON(w, http.StatusServiceUnavailable, degradedResponse{Error: "Store unreachable", Data: report})
		return
	}
	respond.Success(w, http.StatusOK, report)
}
