package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sockgate/sockgate/internal/domain/connection"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`            // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`            // Component check results
	Version string            `json:"version,omitempty"` // Optional version info
}

// HealthChecker verifies component health.
type HealthChecker struct {
	store   connection.Store
	version string
}

// NewHealthChecker creates a HealthChecker. Pass nil for store when no
// persistence is configured.
func NewHealthChecker(store connection.Store, version string) *HealthChecker {
	return &HealthChecker{store: store, version: version}
}

// Check probes the configured components.
func (h *HealthChecker) Check(ctx context.Context) HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.store != nil {
		// Probe with a reserved id; not-found proves the store answers.
		_, err := h.store.FindIdentityByConnectionID(ctx, "healthcheck")
		if err != nil && !errors.Is(err, connection.ErrConnectionNotFound) {
			checks["connection_store"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["connection_store"] = "ok"
		}
	} else {
		checks["connection_store"] = "not configured"
	}

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	return HealthResponse{Status: status, Checks: checks, Version: h.version}
}

// ServeHTTP implements the /health endpoint: 200 when healthy, 503 otherwise.
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
