package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/lexreview/internal/domain"
	"github.com/heartmarshall/lexreview/internal/service/review"
)

type adminService interface {
	Restart(ctx context.Context, input review.RestartInput) error
	Status(ctx context.Context) review.Status
}

// AdminHandler serves operator endpoints. Access control is applied by the
// AdminToken middleware.
type AdminHandler struct {
	svc adminService
	log *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc adminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc: svc,
		log: logger.With("handler", "admin"),
	}
}

type statsResponse struct {
	Pipes     map[string]bool `json:"pipes"`
	Surfaces  int             `json:"surfaces"`
	Lemmas    int             `json:"lemmas"`
	Sightings int             `json:"sightings"`
}

// Restart relaunches one analyzer pipe, or both when pipe is empty.
// POST /admin/restart?pipe=primary|guesser
func (h *AdminHandler) Restart(w http.ResponseWriter, r *http.Request) {
	pipe := r.URL.Query().Get("pipe")

	err := h.svc.Restart(r.Context(), review.RestartInput{Pipe: pipe})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.log.ErrorContext(r.Context(), "restart analyzer",
			slog.String("pipe", pipe),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "restart failed")
		return
	}

	writeJSON(w, http.StatusOK, h.stats(r.Context()))
}

// Stats returns registry sizes and pipe liveness.
// GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats(r.Context()))
}

func (h *AdminHandler) stats(ctx context.Context) statsResponse {
	st := h.svc.Status(ctx)
	return statsResponse{
		Pipes:     st.Pipes,
		Surfaces:  st.Registry.Surfaces,
		Lemmas:    st.Registry.Lemmas,
		Sightings: st.Registry.Sightings,
	}
}
