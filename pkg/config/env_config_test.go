package config

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*SimulationConfig)
		errorField string
	}{
		{"defaults", func(*SimulationConfig) {}, ""},
		{"zero_timestep", func(c *SimulationConfig) { c.Engine.Timestep = 0 }, "Engine"},
		{"frame_rate_too_low", func(c *SimulationConfig) { c.Runner.FrameRate = 0 }, "Runner.FrameRate"},
		{"breaker_requests_too_low", func(c *SimulationConfig) { c.Breaker.MaxRequests = 0 }, "Breaker.MaxRequests"},
		{"breaker_timeout_zero", func(c *SimulationConfig) { c.Breaker.TimeoutSeconds = 0 }, "Breaker.TimeoutSeconds"},
		{"scene_too_small", func(c *SimulationConfig) { c.Scene.Width = 10 }, "Scene"},
		{"unknown_scene", func(c *SimulationConfig) { c.Scene.Name = "moon" }, "Scene.Name"},
		{"composite_scene", func(c *SimulationConfig) { c.Scene.Name = "chain" }, ""},
		{"empty_population", func(c *SimulationConfig) { c.Walkers.Population = 0 }, "Walkers"},
		{"population_ignored_for_demo", func(c *SimulationConfig) {
			c.Scene.Name = "pile"
			c.Walkers.Population = 0
		}, ""},
		{"unknown_renderer", func(c *SimulationConfig) { c.Render.Mode = "vr" }, "Render.Mode"},
		{"tiny_terminal", func(c *SimulationConfig) { c.Render.Columns = 2 }, "Render"},
		{"render_every_zero", func(c *SimulationConfig) { c.Render.Every = 0 }, "Render.Every"},
		{"health_port_too_high", func(c *SimulationConfig) { c.Health.Port = 70000 }, "Health.Port"},
		{"health_disabled_port_ignored", func(c *SimulationConfig) {
			c.Health.Enabled = false
			c.Health.Port = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()

			if tt.errorField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Validate() error = %v (%T), want *ValidationError", err, err)
			}
			if validationErr.Field != tt.errorField {
				t.Errorf("error field = %q, want %q", validationErr.Field, tt.errorField)
			}
		})
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("WALKER_GRAVITY_Y", "120.5")
	t.Setenv("WALKER_JOINT_ITERATIONS", "6")
	t.Setenv("WALKER_POPULATION", "4")
	t.Setenv("WALKER_MAX_TICKS", "900")
	t.Setenv("WALKER_HEALTH_ENABLED", "false")
	t.Setenv("WALKER_SCENE", "cars")
	t.Setenv("WALKER_RENDERER", "none")

	config := DefaultConfig()
	if err := ApplyEnvironmentOverrides(config); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides() error = %v", err)
	}

	if config.Engine.GravityY != 120.5 {
		t.Errorf("GravityY = %v, want 120.5", config.Engine.GravityY)
	}
	if config.Engine.JointIterations != 6 {
		t.Errorf("JointIterations = %d, want 6", config.Engine.JointIterations)
	}
	if config.Walkers.Population != 4 {
		t.Errorf("Population = %d, want 4", config.Walkers.Population)
	}
	if config.Runner.MaxTicks != 900 {
		t.Errorf("MaxTicks = %d, want 900", config.Runner.MaxTicks)
	}
	if config.Health.Enabled {
		t.Error("Health.Enabled = true, want false")
	}
	if config.Scene.Name != "cars" || config.Render.Mode != "none" {
		t.Errorf("Scene.Name, Render.Mode = %q, %q; want cars, none", config.Scene.Name, config.Render.Mode)
	}
}

func TestApplyEnvironmentOverrides_Malformed(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"WALKER_TIMESTEP", "fast"},
		{"WALKER_FRAME_RATE", "1.5"},
		{"WALKER_MAX_TICKS", "-1"},
		{"WALKER_HEALTH_ENABLED", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if err := ApplyEnvironmentOverrides(DefaultConfig()); err == nil {
				t.Errorf("ApplyEnvironmentOverrides() error = nil for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("WALKER_TEST_STRING", "test_value")
	if got := getEnvOrDefault("WALKER_TEST_STRING", "default"); got != "test_value" {
		t.Errorf("getEnvOrDefault() = %q, want test_value", got)
	}
	if got := getEnvOrDefault("WALKER_TEST_NONEXISTENT", "default"); got != "default" {
		t.Errorf("getEnvOrDefault() = %q, want default", got)
	}
}
