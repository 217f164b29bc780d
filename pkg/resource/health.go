// pkg/resource/health.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TaskHealthCheck turns unhealthy once a tracked background task of the
// walker process has failed, the manager has shut down, the goroutine
// budget is nearly spent, or memory sampling has stalled.
type TaskHealthCheck struct {
	manager *ResourceManager
	now     func() time.Time
}

// NewTaskHealthCheck creates a readiness check over manager's tasks.
func NewTaskHealthCheck(manager *ResourceManager) *TaskHealthCheck {
	return &TaskHealthCheck{manager: manager, now: time.Now}
}

func (c *TaskHealthCheck) Name() string { return "background_tasks" }

// Check reports the first problem found.
func (c *TaskHealthCheck) Check(ctx context.Context) error {
	rm := c.manager
	if rm.ctx.Err() != nil {
		return errors.New("resource manager shut down")
	}
	if err := rm.Err(); err != nil {
		return fmt.Errorf("background task failed: %w", err)
	}

	stats := rm.GetResourceStats()
	if threshold := stats.MaxGoroutines * 4 / 5; stats.GoroutineCount > threshold {
		return fmt.Errorf("%d of %d task slots in use", stats.GoroutineCount, stats.MaxGoroutines)
	}

	rm.mu.Lock()
	monitoring := rm.running
	rm.mu.Unlock()
	if monitoring && !stats.LastMemoryCheck.IsZero() {
		if age := c.now().Sub(stats.LastMemoryCheck); age > 2*rm.limits.CheckInterval {
			return fmt.Errorf("memory sample is %s old", age.Round(time.Second))
		}
	}
	return nil
}
