package health

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/logging"
	"github.com/opd-ai/go-walker/pkg/physics"
)

// TestHealthCheckIntegration wires the checks to a real simulation
func TestHealthCheckIntegration(t *testing.T) {
	sim, err := engine.NewSimulation(physics.DefaultConfig(), engine.DefaultBreakerSettings(), logging.NewLoggerTo(io.Discard))
	if err != nil {
		t.Fatalf("NewSimulation() error = %v", err)
	}
	box, err := physics.NewRectangle(0, 0, 10, 10, physics.DefaultBodyOptions())
	if err != nil {
		t.Fatalf("NewRectangle() error = %v", err)
	}
	if err := sim.World.Add(box); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	hc := NewHealthChecker()
	hc.AddCheck(NewSimulationHealthCheck(sim.Runner.Running))
	hc.AddCheck(NewWorldHealthCheck(sim.CheckFinite))
	server := httptest.NewServer(NewServeMux(hc, func() interface{} { return sim.Engine.Stats() }))
	defer server.Close()

	ready := func() HealthStatus {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return hc.CheckHealth(ctx)
	}

	t.Run("before_start", func(t *testing.T) {
		health := ready()
		if health.Checks["simulation"].Status != "unhealthy" {
			t.Error("simulation should be unhealthy before Run")
		}
		if health.Checks["world"].Status != "healthy" {
			t.Errorf("world check = %+v, want healthy", health.Checks["world"])
		}
	})

	t.Run("while_running", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- sim.Run(ctx, engine.NewManualClock(time.Unix(0, 0), 1)) }()
		deadline := time.Now().Add(2 * time.Second)
		for !sim.Runner.Running() {
			if time.Now().After(deadline) {
				t.Fatal("simulation never started")
			}
			time.Sleep(time.Millisecond)
		}

		resp, err := http.Get(server.URL + "/health/ready")
		if err != nil {
			t.Fatalf("GET /health/ready: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("ready status = %d, want 200", resp.StatusCode)
		}

		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	t.Run("after_divergence", func(t *testing.T) {
		box.SetVelocity(physics.Vec(math.NaN(), 0))
		sim.Step(1)

		if health := ready(); health.Checks["world"].Status != "unhealthy" {
			t.Error("world should be unhealthy once a body is NaN")
		}
		resp, err := http.Get(server.URL + "/stats")
		if err != nil {
			t.Fatalf("GET /stats: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("stats status = %d, want 200", resp.StatusCode)
		}
	})
}
