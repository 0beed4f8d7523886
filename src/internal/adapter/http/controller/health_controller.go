package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/commons"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// HealthController answers liveness checks. db may be nil for the memory backend.
type HealthController struct {
	db      Pinger
	backend string
}

func NewHealthController(db Pinger, backend string) *HealthController {
	return &HealthController{db: db, backend: backend}
}

func (c *HealthController) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("/healthz", c.health)
}

func (c *HealthController) health(w http.ResponseWriter, r *http.Request) {
	if c.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := c.db.PingContext(ctx); err != nil {
			logError(r, err, nil)
			writeJSON(w, http.StatusServiceUnavailable, commons.ErrorResponse[HealthResponse]("database unavailable"))
			return
		}
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("ok", HealthResponse{Status: "up", Backend: c.backend}))
}
