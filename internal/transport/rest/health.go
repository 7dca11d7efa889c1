package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/heartmarshall/lexreview/internal/service/review"
)

// statusSource reports analyzer liveness.
type statusSource interface {
	Status(ctx context.Context) review.Status
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	svc     statusSource
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(svc statusSource, version string) *HealthHandler {
	return &HealthHandler{svc: svc, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status string `json:"status"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 when both analyzer pipes are alive,
// 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status(r.Context())

	status, body := http.StatusOK, "ok"
	if !st.Ready() {
		status, body = http.StatusServiceUnavailable, "down"
	}

	writeJSON(w, status, HealthResponse{
		Status:    body,
		Timestamp: time.Now(),
	})
}

// Health reports every pipe separately and includes the version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status(r.Context())

	components := make(map[string]CompStatus, len(st.Pipes))
	for name, alive := range st.Pipes {
		if alive {
			components["analyzer."+name] = CompStatus{Status: "ok"}
		} else {
			components["analyzer."+name] = CompStatus{Status: "down"}
		}
	}

	status, overall := http.StatusOK, "ok"
	if !st.Ready() {
		status, overall = http.StatusServiceUnavailable, "down"
	}

	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
