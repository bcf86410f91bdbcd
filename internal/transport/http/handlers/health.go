package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/response"
)

// ReadinessChecker is one dependency probed by Readyz.
type ReadinessChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function to ReadinessChecker.
type CheckFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.Label }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

type HealthHandler struct {
	checkers []ReadinessChecker
}

func NewHealthHandler(checkers ...ReadinessChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Healthz is a simple liveness check (process is alive).
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
}

type checkResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Readyz checks all dependencies concurrently.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	results := make([]checkResult, len(h.checkers))
	var wg sync.WaitGroup
	for i, c := range h.checkers {
		wg.Add(1)
		go func(idx int, c ReadinessChecker) {
			defer wg.Done()
			res := checkResult{Name: c.Name(), Status: "healthy"}
			if err := c.Check(ctx); err != nil {
				res.Status = "unhealthy"
				res.Error = err.Error()
			}
			results[idx] = res
		}(i, c)
	}
	wg.Wait()

	status := "ready"
	code := http.StatusOK
	for _, res := range results {
		if res.Status != "healthy" {
			status = "not_ready"
			code = http.StatusServiceUnavailable
			break
		}
	}

	response.Data(w, code, map[string]any{
		"status": status,
		"checks": results,
	})
}
