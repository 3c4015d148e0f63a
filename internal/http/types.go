package http

import (
	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/fyrsmithlabs/depthbudget/internal/telemetry"
)

// RunRequest is the request body for POST /api/v1/run.
type RunRequest struct {
	Policy    string  `json:"policy"`
	Branching *uint64 `json:"branching,omitempty"` // defaults to 3
	Budget    uint64  `json:"budget"`
	NodeLimit uint64  `json:"node_limit,omitempty"` // capped by the server limit
}

// RunResponse is the response body for POST /api/v1/run.
type RunResponse struct {
	Count           uint64        `json:"count"`
	Result          budget.Result `json:"result"`
	DurationSeconds float64       `json:"duration_seconds"`
}

// SweepRequest is the request body for POST /api/v1/sweep.
type SweepRequest struct {
	Policies  []string `json:"policies,omitempty"`  // defaults to all
	Branching *uint64  `json:"branching,omitempty"` // defaults to 3
	From      uint64   `json:"from"`
	To        uint64   `json:"to"` // exclusive
}

// PoliciesResponse is the response body for GET /api/v1/policies.
type PoliciesResponse struct {
	Policies []budget.Policy `json:"policies"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Version   string                  `json:"version,omitempty"`
	Telemetry *telemetry.HealthStatus `json:"telemetry,omitempty"`
}
