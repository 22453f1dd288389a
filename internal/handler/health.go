package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness answers as long as the process is up; it deliberately touches
// no dependencies so a postgres outage doesn't get the pod restarted.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "ledger-api",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := map[string]string{"database": "ok"}

	if err := h.db.PingContext(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("readiness check failed", "error", err)
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "down"
	}

	RespondJSON(w, status, map[string]any{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
