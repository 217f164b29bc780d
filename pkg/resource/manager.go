// pkg/resource/manager.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-walker/pkg/health"
	"github.com/opd-ai/go-walker/pkg/logging"
)

// ErrGoroutineLimit is returned by Go when the tracked goroutine limit is
// reached.
var ErrGoroutineLimit = errors.New("goroutine limit exceeded")

// Limits bounds what the manager allows.
type Limits struct {
	MaxMemoryMB     uint64
	MaxGoroutines   int64
	ShutdownTimeout time.Duration
	CheckInterval   time.Duration
}

// DefaultLimits returns the limits used by the walker binary.
func DefaultLimits() Limits {
	return Limits{
		MaxMemoryMB:     512,
		MaxGoroutines:   16,
		ShutdownTimeout: 10 * time.Second,
		CheckInterval:   5 * time.Second,
	}
}

// ResourceManager runs the background goroutines of a simulation process
// (health server, simulation loop) and samples memory, so shutdown can wait
// for all of them within a deadline.
type ResourceManager struct {
	limits Limits

	goroutines atomic.Int64
	memoryMB   atomic.Uint64
	lastCheck  atomic.Int64 // unix nanoseconds

	// readMemory is swapped in tests.
	readMemory func() uint64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
	running bool
	errs    []error
	logger  *logging.Logger
}

// NewResourceManager creates a manager with the given limits.
func NewResourceManager(limits Limits, logger *logging.Logger) *ResourceManager {
	if logger == nil {
		logger = logging.NewLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ResourceManager{
		limits:     limits,
		readMemory: health.CurrentMemoryMB,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Start begins the memory monitoring loop.
func (rm *ResourceManager) Start() error {
	rm.mu.Lock()
	if rm.running {
		rm.mu.Unlock()
		return fmt.Errorf("resource manager already running")
	}
	rm.running = true
	rm.mu.Unlock()

	go rm.monitoringLoop()

	rm.logger.Info(rm.ctx, "Resource manager started",
		"max_memory_mb", rm.limits.MaxMemoryMB,
		"max_goroutines", rm.limits.MaxGoroutines,
		"check_interval", rm.limits.CheckInterval.String(),
	)
	return nil
}

// Go runs fn on a tracked goroutine. fn's context is cancelled when ctx is
// done or the manager shuts down. A returned error or a panic is logged and
// kept for Err.
func (rm *ResourceManager) Go(ctx context.Context, name string, fn func(context.Context) error) error {
	if current := rm.goroutines.Add(1); current > rm.limits.MaxGoroutines {
		rm.goroutines.Add(-1)
		rm.logger.Warn(ctx, "Goroutine limit exceeded",
			"current", current-1,
			"limit", rm.limits.MaxGoroutines,
			"name", name,
		)
		return fmt.Errorf("%s: %w (%d)", name, ErrGoroutineLimit, rm.limits.MaxGoroutines)
	}

	runCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(rm.ctx, cancel)

	go func() {
		defer rm.goroutines.Add(-1)
		defer cancel()
		defer stop()
		defer func() {
			if r := recover(); r != nil {
				rm.fail(ctx, name, fmt.Errorf("panic: %v", r))
			}
		}()

		if err := fn(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			rm.fail(ctx, name, err)
		}
	}()
	return nil
}

func (rm *ResourceManager) fail(ctx context.Context, name string, err error) {
	rm.logger.Error(ctx, "Tracked goroutine failed", err, "name", name)
	rm.mu.Lock()
	rm.errs = append(rm.errs, fmt.Errorf("%s: %w", name, err))
	rm.mu.Unlock()
}

// Err joins the errors of all failed goroutines.
func (rm *ResourceManager) Err() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return errors.Join(rm.errs...)
}

// CheckMemoryUsage samples memory and compares it with the limit.
func (rm *ResourceManager) CheckMemoryUsage() error {
	currentMB := rm.readMemory()
	rm.memoryMB.Store(currentMB)
	rm.lastCheck.Store(time.Now().UnixNano())

	if currentMB > rm.limits.MaxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, rm.limits.MaxMemoryMB)
	}
	return nil
}

// GetGoroutineCount returns the current number of tracked goroutines.
func (rm *ResourceManager) GetGoroutineCount() int64 {
	return rm.goroutines.Load()
}

// GetResourceStats returns current resource usage statistics.
func (rm *ResourceManager) GetResourceStats() ResourceStats {
	stats := ResourceStats{
		GoroutineCount: rm.GetGoroutineCount(),
		MaxGoroutines:  rm.limits.MaxGoroutines,
		MemoryUsageMB:  rm.memoryMB.Load(),
		MaxMemoryMB:    rm.limits.MaxMemoryMB,
	}
	if ns := rm.lastCheck.Load(); ns != 0 {
		stats.LastMemoryCheck = time.Unix(0, ns)
	}
	return stats
}

// ResourceStats contains resource usage statistics.
type ResourceStats struct {
	GoroutineCount  int64     `json:"goroutine_count"`
	MaxGoroutines   int64     `json:"max_goroutines"`
	MemoryUsageMB   uint64    `json:"memory_usage_mb"`
	MaxMemoryMB     uint64    `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// Shutdown cancels every tracked goroutine and waits for them to return
// within the shutdown timeout. It returns Err's errors as well.
func (rm *ResourceManager) Shutdown(ctx context.Context) error {
	rm.mu.Lock()
	wasRunning := rm.running
	rm.running = false
	rm.mu.Unlock()

	rm.logger.Info(ctx, "Shutting down resource manager")
	rm.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, rm.limits.ShutdownTimeout)
	defer cancel()

	if wasRunning {
		select {
		case <-rm.done:
		case <-shutdownCtx.Done():
			rm.logger.Warn(ctx, "Resource manager monitoring loop did not stop gracefully")
		}
	}
	if err := rm.waitForGoroutines(shutdownCtx); err != nil {
		return errors.Join(err, rm.Err())
	}
	return rm.Err()
}

// waitForGoroutines waits for all tracked goroutines to finish or timeout.
func (rm *ResourceManager) waitForGoroutines(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		count := rm.GetGoroutineCount()
		if count == 0 {
			rm.logger.Debug(ctx, "All tracked goroutines finished")
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			remaining := rm.GetGoroutineCount()
			rm.logger.Warn(ctx, "Shutdown timeout exceeded with goroutines still running",
				"remaining", remaining,
			)
			return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
		}
	}
}

func (rm *ResourceManager) monitoringLoop() {
	defer close(rm.done)

	ticker := time.NewTicker(rm.limits.CheckInterval)
	defer ticker.Stop()

	rm.performResourceChecks()
	for {
		select {
		case <-ticker.C:
			rm.performResourceChecks()
		case <-rm.ctx.Done():
			return
		}
	}
}

func (rm *ResourceManager) performResourceChecks() {
	if err := rm.CheckMemoryUsage(); err != nil {
		rm.logger.Error(rm.ctx, "Memory limit exceeded", err,
			"current_mb", rm.memoryMB.Load(),
			"limit_mb", rm.limits.MaxMemoryMB,
		)
	}
	rm.logger.Debug(rm.ctx, "Resource usage check",
		"goroutines", rm.GetGoroutineCount(),
		"memory_mb", rm.memoryMB.Load(),
	)
}
