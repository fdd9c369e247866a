package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

const readinessTimeout = 3 * time.Second

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type dependencyCheck struct {
	name string
	// optional checks are reported but never fail readiness
	optional bool
	run      func(ctx context.Context) (string, error)
}

// HealthDependenciesHandler handles GET /health/ready. Only the stores the
// gateway was started with are pinged.
type HealthDependenciesHandler struct {
	checks []dependencyCheck
}

func NewHealthDependenciesHandler(db *mongo.Database, rdb *redis.Client) *HealthDependenciesHandler {
	h := &HealthDependenciesHandler{}
	if db != nil {
		h.checks = append(h.checks, dependencyCheck{name: "mongodb", run: func(ctx context.Context) (string, error) {
			return "ok", db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		}})
	}
	if rdb != nil {
		h.checks = append(h.checks, dependencyCheck{name: "redis", run: func(ctx context.Context) (string, error) {
			return "ok", rdb.Ping(ctx).Err()
		}})
	}
	return h
}

// WithSession adds the service session to the report. A logged-out session
// does not make the gateway unready: the next Gin API call logs in again.
func (h *HealthDependenciesHandler) WithSession(session ports.Session) *HealthDependenciesHandler {
	if session == nil {
		return h
	}
	h.checks = append(h.checks, dependencyCheck{name: "gin_session", optional: true, run: func(ctx context.Context) (string, error) {
		authed, err := session.IsAuthenticated(ctx)
		if err != nil || !authed {
			return "logged_out", err
		}
		return "authenticated", nil
	}})
	return h
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness reports dependency health.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	resp := readinessResponse{Status: "ok", Dependencies: make(map[string]dependencyStatus, len(h.checks))}
	for _, check := range h.checks {
		status, err := check.run(ctx)
		switch {
		case err == nil:
			resp.Dependencies[check.name] = dependencyStatus{Status: status}
		case check.optional:
			resp.Dependencies[check.name] = dependencyStatus{Status: status, Error: err.Error()}
		default:
			resp.Dependencies[check.name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			resp.Status = "degraded"
		}
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
