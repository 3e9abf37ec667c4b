package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/streakboard/pkg/database"
	"github.com/wonny/streakboard/pkg/redis"
)

// HealthChecker reports database health (database.DB)
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// CacheHealthChecker reports L2 cache health (redis.Client)
type CacheHealthChecker interface {
	HealthCheck(ctx context.Context) (*redis.HealthStatus, error)
}

// HealthHandler serves /health
type HealthHandler struct {
	db    HealthChecker
	cache CacheHealthChecker
}

// NewHealthHandler creates a health handler. cache may be nil
func NewHealthHandler(db HealthChecker, cache CacheHealthChecker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check returns server, database and cache health.
// DB 장애는 503, redis 장애는 200 + degraded (캘린더는 DB로 계속 서비스)
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	body := map[string]interface{}{
		"status":  "ok",
		"service": "streakboard-api",
	}

	if h.cache != nil {
		status, err := h.cache.HealthCheck(ctx)
		if err != nil {
			body["status"] = "degraded"
			body["redis"] = "unavailable"
		} else {
			body["redis"] = status
		}
	}

	status, err := h.db.HealthCheck(ctx)
	if err != nil {
		body["status"] = "degraded"
		body["database"] = "unavailable"
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["database"] = status

	respondJSON(w, http.StatusOK, body)
}
