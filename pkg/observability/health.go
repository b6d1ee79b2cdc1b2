package observability

import (
	"context"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult is the result of one health check.
type HealthCheckResult struct {
	Name     string        `json:"name"`
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// HealthChecker performs a health check.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthRegistry holds the checks of the components the application was
// configured with.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds or replaces the checker for a component.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Names returns the registered component names in order.
func (r *HealthRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs every check concurrently and returns the results ordered by
// component name.
func (r *HealthRegistry) Check(ctx context.Context) []HealthCheckResult {
	names := r.Names()

	r.mu.RLock()
	checkers := make([]HealthChecker, len(names))
	for i, name := range names {
		checkers[i] = r.checkers[name]
	}
	r.mu.RUnlock()

	results := make([]HealthCheckResult, len(names))
	var wg sync.WaitGroup
	for i := range checkers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := time.Now()
			res := checkers[i](ctx)
			res.Name = names[i]
			res.Duration = time.Since(start)
			results[i] = res
		}(i)
	}
	wg.Wait()
	return results
}

// OverallStatus folds results into the worst status. No results is healthy.
func OverallStatus(results []HealthCheckResult) HealthStatus {
	status := HealthStatusHealthy
	for _, res := range results {
		switch res.Status {
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		}
	}
	return status
}

// PingChecker reports a component as healthy when ping succeeds and with
// onFailure otherwise. Optional components should fail as degraded.
func PingChecker(component string, onFailure HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{
				Status:  onFailure,
				Message: component + " unreachable: " + err.Error(),
			}
		}
		return HealthCheckResult{
			Status:  HealthStatusHealthy,
			Message: component + " reachable",
		}
	}
}
