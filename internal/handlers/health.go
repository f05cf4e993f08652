package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "2.0.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// Health pings both storage planes and reports overall status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	allHealthy := true

	msgStart := time.Now()
	if err := h.msgs.Ping(ctx); err != nil {
		checks["messages"] = Check{Status: "fail", Message: "connection failed"}
		allHealthy = false
	} else {
		checks["messages"] = Check{Status: "pass", Latency: time.Since(msgStart).String()}
	}

	userStart := time.Now()
	if err := h.users.Ping(ctx); err != nil {
		checks["users"] = Check{Status: "fail", Message: "connection failed"}
		allHealthy = false
	} else {
		checks["users"] = Check{Status: "pass", Latency: time.Since(userStart).String()}
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Version:   version,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ConfigResponse exposes the public client configuration.
type ConfigResponse struct {
	GoogleClientID string `json:"googleClientId"`
}

// ClientConfig tells the frontend which OAuth client to use.
func (h *Handler) ClientConfig(googleClientID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.JSON(w, http.StatusOK, ConfigResponse{GoogleClientID: googleClientID})
	}
}
