// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/opd-ai/go-walker/pkg/composite"
)

// ValidationError describes a configuration field that failed validation
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string

	cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap exposes the underlying validation failure, if any.
func (e *ValidationError) Unwrap() error { return e.cause }

func invalid(field string, value interface{}, cause error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: cause.Error(), cause: cause}
}

// Validate checks every section and returns the first failure as a
// *ValidationError
func (c *SimulationConfig) Validate() error {
	if err := c.ToPhysics().Validate(); err != nil {
		return invalid("Engine", c.Engine, err)
	}
	if c.Runner.FrameRate < 1 || c.Runner.FrameRate > 1000 {
		return &ValidationError{Field: "Runner.FrameRate", Value: c.Runner.FrameRate, Message: "must be between 1 and 1000"}
	}
	if c.Breaker.MaxRequests < 1 {
		return &ValidationError{Field: "Breaker.MaxRequests", Value: c.Breaker.MaxRequests, Message: "must be at least 1"}
	}
	if c.Breaker.MaxConsecutiveFails < 1 {
		return &ValidationError{Field: "Breaker.MaxConsecutiveFails", Value: c.Breaker.MaxConsecutiveFails, Message: "must be at least 1"}
	}
	if c.Breaker.TimeoutSeconds <= 0 {
		return &ValidationError{Field: "Breaker.TimeoutSeconds", Value: c.Breaker.TimeoutSeconds, Message: "must be positive"}
	}
	if c.Scene.Width < 100 || c.Scene.Height < 200 {
		return &ValidationError{Field: "Scene", Value: fmt.Sprintf("%vx%v", c.Scene.Width, c.Scene.Height), Message: "must be at least 100x200"}
	}
	if !knownScene(c.Scene.Name) {
		return &ValidationError{Field: "Scene.Name", Value: c.Scene.Name, Message: fmt.Sprintf("must be %q or one of %v", WalkerScene, composite.Scenes())}
	}
	if c.Scene.Name == WalkerScene {
		if err := c.ToWalker().Validate(); err != nil {
			return invalid("Walkers", c.Walkers, err)
		}
		if c.Walkers.GaitPeriod <= 0 {
			return &ValidationError{Field: "Walkers.GaitPeriod", Value: c.Walkers.GaitPeriod, Message: "must be positive"}
		}
	}
	switch c.Render.Mode {
	case "terminal", "engo", "none":
	default:
		return &ValidationError{Field: "Render.Mode", Value: c.Render.Mode, Message: "must be terminal, engo or none"}
	}
	if c.Render.Columns < 10 || c.Render.Rows < 5 {
		return &ValidationError{Field: "Render", Value: fmt.Sprintf("%dx%d", c.Render.Columns, c.Render.Rows), Message: "terminal must be at least 10x5"}
	}
	if c.Render.Every < 1 {
		return &ValidationError{Field: "Render.Every", Value: c.Render.Every, Message: "must be at least 1"}
	}
	if c.Health.Enabled && (c.Health.Port < 1 || c.Health.Port > 65535) {
		return &ValidationError{Field: "Health.Port", Value: c.Health.Port, Message: "must be between 1 and 65535"}
	}
	return nil
}

func knownScene(name string) bool {
	if name == WalkerScene {
		return true
	}
	for _, s := range composite.Scenes() {
		if s == name {
			return true
		}
	}
	return false
}

// ApplyEnvironmentOverrides applies WALKER_* environment variables on top
// of the configuration. Malformed values are reported rather than ignored.
func ApplyEnvironmentOverrides(config *SimulationConfig) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"WALKER_TIMESTEP", &config.Engine.Timestep},
		{"WALKER_TIME_SCALE", &config.Engine.TimeScale},
		{"WALKER_GRAVITY_X", &config.Engine.GravityX},
		{"WALKER_GRAVITY_Y", &config.Engine.GravityY},
		{"WALKER_SCENE_WIDTH", &config.Scene.Width},
		{"WALKER_SCENE_HEIGHT", &config.Scene.Height},
		{"WALKER_LASER_SPEED", &config.Walkers.LaserSpeed},
	}
	for _, f := range floats {
		if v, ok := os.LookupEnv(f.key); ok {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			*f.dst = parsed
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"WALKER_JOINT_ITERATIONS", &config.Engine.JointIterations},
		{"WALKER_FRAME_RATE", &config.Runner.FrameRate},
		{"WALKER_POPULATION", &config.Walkers.Population},
		{"WALKER_HEALTH_PORT", &config.Health.Port},
	}
	for _, f := range ints {
		if v, ok := os.LookupEnv(f.key); ok {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			*f.dst = parsed
		}
	}

	if v, ok := os.LookupEnv("WALKER_MAX_TICKS"); ok {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("WALKER_MAX_TICKS: %w", err)
		}
		config.Runner.MaxTicks = parsed
	}
	if v, ok := os.LookupEnv("WALKER_HEALTH_ENABLED"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("WALKER_HEALTH_ENABLED: %w", err)
		}
		config.Health.Enabled = parsed
	}

	config.Scene.Name = getEnvOrDefault("WALKER_SCENE", config.Scene.Name)
	config.Render.Mode = getEnvOrDefault("WALKER_RENDERER", config.Render.Mode)
	return nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
