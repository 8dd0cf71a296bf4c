// Package handler provides HTTP handlers for the People Registry API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
	"github.com/peopleregistry/peopleregistry/internal/api/response"
	"github.com/peopleregistry/peopleregistry/internal/resilience"
)

// Pinger checks connectivity to a backing dependency.
type Pinger func(ctx context.Context) error

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	dbPing    Pinger
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. dbPing may be nil when no database
// is configured (in-memory mode); registry may be nil to skip provider status.
func NewOpsHandler(version, buildTime string, dbPing Pinger, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		dbPing:    dbPing,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Returns 503
// when the database is unreachable so load balancers stop routing here.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.dbPing(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.dbPing != nil {
		dbStatus := models.HealthStatusOK
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		if err := h.dbPing(ctx); err != nil {
			dbStatus = models.HealthStatusFail
			status.Status = models.HealthStatusDegraded
		}
		cancel()
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "database",
			Status: dbStatus,
		})
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			ps := models.ProviderStatus{
				Provider:  ph.Name,
				Status:    models.HealthStatusOK,
				LastError: ph.LastError,
			}
			switch {
			case ph.IsUnhealthy():
				ps.Status = models.HealthStatusFail
				status.Status = models.HealthStatusDegraded
			case ph.IsDegraded():
				ps.Status = models.HealthStatusDegraded
				status.Status = models.HealthStatusDegraded
			}
			if ph.LastSuccessAt != nil {
				ts := models.Timestamp(*ph.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
