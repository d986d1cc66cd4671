package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// Pinger is anything whose liveness can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// NewRedisPinger adapts a Redis client to the Pinger interface.
func NewRedisPinger(rdb *redis.Client) Pinger {
	return redisPinger{rdb: rdb}
}

// HealthChecker reports the liveness of the two backing services: the
// database and the session store.
type HealthChecker struct {
	db       Pinger
	sessions Pinger
	log      *slog.Logger
}

// NewHealthChecker creates a HealthChecker.
func NewHealthChecker(db, sessions Pinger, log *slog.Logger) *HealthChecker {
	return &HealthChecker{db: db, sessions: sessions, log: log}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.db.Ping(req.Context()); err != nil {
		status["database"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: DB ping", "error", err)
	} else {
		status["database"] = "ok"
	}

	if err = h.sessions.Ping(req.Context()); err != nil {
		status["session_store"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: session store ping", "error", err)
	} else {
		status["session_store"] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
