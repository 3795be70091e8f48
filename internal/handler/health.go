package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	db  *sql.DB
	rdb *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	redisStatus := "ok"
	httpStatus := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Warn("readiness check failed: database unreachable", "error", err)
		dbStatus = "down"
		httpStatus = http.StatusServiceUnavailable
	}
	if err := h.rdb.Ping(r.Context()).Err(); err != nil {
		slog.Warn("readiness check failed: redis unreachable", "error", err)
		redisStatus = "down"
		httpStatus = http.StatusServiceUnavailable
	}

	overallStatus := "ok"
	if httpStatus != http.StatusOK {
		overallStatus = "down"
	}

	RespondJSON(w, httpStatus, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": map[string]string{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
