package v1

import (
	"context"
	"net/http"
	"time"

	"cinescope-backend/pkg/logger"
	"cinescope-backend/pkg/utils"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger // nil for the in-memory store
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// GET /health, GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "memory"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logger.WithContext(r.Context()).Error().Err(err).Msg("Health check: database unreachable")
			utils.WriteErrorWith(w, http.StatusServiceUnavailable, "database unreachable", utils.Envelope{"status": "degraded"})
			return
		}
		dbStatus = "connected"
	}
	utils.WriteSuccess(w, http.StatusOK, "", utils.Envelope{"status": "ok", "db": dbStatus})
}
