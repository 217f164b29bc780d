// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/physics"
	"github.com/opd-ai/go-walker/pkg/walker"
)

// SimulationConfig contains configuration for a simulation run
type SimulationConfig struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Runner  RunnerConfig  `json:"runner" yaml:"runner"`
	Breaker BreakerConfig `json:"breaker" yaml:"breaker"`
	Scene   SceneConfig   `json:"scene" yaml:"scene"`
	Walkers WalkerConfig  `json:"walkers" yaml:"walkers"`
	Render  RenderConfig  `json:"render" yaml:"render"`
	Health  HealthConfig  `json:"health" yaml:"health"`
}

// EngineConfig contains the physics step settings
type EngineConfig struct {
	Timestep        float64 `json:"timestep" yaml:"timestep"`
	TimeScale       float64 `json:"timeScale" yaml:"timeScale"`
	TimeClamp       float64 `json:"timeClamp" yaml:"timeClamp"`
	JointIterations int     `json:"jointIterations" yaml:"jointIterations"`
	GravityX        float64 `json:"gravityX" yaml:"gravityX"`
	GravityY        float64 `json:"gravityY" yaml:"gravityY"`
}

// RunnerConfig contains frame pacing settings
type RunnerConfig struct {
	FrameRate int `json:"frameRate" yaml:"frameRate"`
	// MaxTicks stops the run after this many steps; 0 runs until interrupted.
	MaxTicks uint64 `json:"maxTicks" yaml:"maxTicks"`
}

// BreakerConfig contains circuit breaker settings for frame hooks
type BreakerConfig struct {
	MaxRequests         uint32  `json:"maxRequests" yaml:"maxRequests"`
	IntervalSeconds     float64 `json:"intervalSeconds" yaml:"intervalSeconds"`
	TimeoutSeconds      float64 `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	MaxConsecutiveFails uint32  `json:"maxConsecutiveFails" yaml:"maxConsecutiveFails"`
}

// SceneConfig selects what is simulated
type SceneConfig struct {
	// Name is "walkers" or one of the composite demo scenes.
	Name   string  `json:"name" yaml:"name"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// WalkerConfig contains walker population settings
type WalkerConfig struct {
	Population  int     `json:"population" yaml:"population"`
	Lifespan    uint64  `json:"lifespan" yaml:"lifespan"`
	MaxRotation float64 `json:"maxRotation" yaml:"maxRotation"`
	LaserSpeed  float64 `json:"laserSpeed" yaml:"laserSpeed"`
	GaitPeriod  float64 `json:"gaitPeriod" yaml:"gaitPeriod"`
	GaitSwing   float64 `json:"gaitSwing" yaml:"gaitSwing"`
}

// RenderConfig contains renderer settings
type RenderConfig struct {
	// Mode is "terminal", "engo" or "none".
	Mode    string `json:"mode" yaml:"mode"`
	Columns int    `json:"columns" yaml:"columns"`
	Rows    int    `json:"rows" yaml:"rows"`
	// Every draws one frame in this many runner frames.
	Every int `json:"every" yaml:"every"`
}

// HealthConfig contains health server settings
type HealthConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Port        int    `json:"port" yaml:"port"`
	MaxMemoryMB uint64 `json:"maxMemoryMB" yaml:"maxMemoryMB"`
}

// WalkerScene is the scene name for the walker population.
const WalkerScene = "walkers"

// DefaultConfig returns a default simulation configuration
func DefaultConfig() *SimulationConfig {
	pc := physics.DefaultConfig()
	wc := walker.DefaultConfig()
	bs := engine.DefaultBreakerSettings()
	return &SimulationConfig{
		Engine: EngineConfig{
			Timestep:        pc.Timestep,
			TimeScale:       pc.TimeScale,
			TimeClamp:       pc.TimeClamp,
			JointIterations: pc.JointIterations,
			GravityX:        pc.Gravity.X,
			GravityY:        pc.Gravity.Y,
		},
		Runner: RunnerConfig{
			FrameRate: 60,
		},
		Breaker: BreakerConfig{
			MaxRequests:         bs.MaxRequests,
			IntervalSeconds:     bs.Interval.Seconds(),
			TimeoutSeconds:      bs.Timeout.Seconds(),
			MaxConsecutiveFails: bs.MaxConsecutiveFails,
		},
		Scene: SceneConfig{
			Name:   WalkerScene,
			Width:  1000,
			Height: 900,
		},
		Walkers: WalkerConfig{
			Population:  wc.Size,
			Lifespan:    wc.Lifespan,
			MaxRotation: wc.MaxRotation,
			LaserSpeed:  wc.LaserSpeed,
			GaitPeriod:  60,
			GaitSwing:   0.3,
		},
		Render: RenderConfig{
			Mode:    "terminal",
			Columns: 100,
			Rows:    36,
			Every:   4,
		},
		Health: HealthConfig{
			Enabled:     true,
			Port:        8080,
			MaxMemoryMB: 512,
		},
	}
}

// ToPhysics converts the engine section to physics settings
func (c *SimulationConfig) ToPhysics() physics.Config {
	return physics.Config{
		Timestep:        c.Engine.Timestep,
		TimeScale:       c.Engine.TimeScale,
		TimeClamp:       c.Engine.TimeClamp,
		JointIterations: c.Engine.JointIterations,
		Gravity:         physics.Vec(c.Engine.GravityX, c.Engine.GravityY),
	}
}

// ToBreaker converts the breaker section to hook breaker settings
func (c *SimulationConfig) ToBreaker() engine.BreakerSettings {
	return engine.BreakerSettings{
		MaxRequests:         c.Breaker.MaxRequests,
		Interval:            seconds(c.Breaker.IntervalSeconds),
		Timeout:             seconds(c.Breaker.TimeoutSeconds),
		MaxConsecutiveFails: c.Breaker.MaxConsecutiveFails,
	}
}

// ToWalker converts the walker section, laying the arena out to the scene
// height
func (c *SimulationConfig) ToWalker() walker.Config {
	wc := walker.DefaultConfig()
	wc.Size = c.Walkers.Population
	wc.Lifespan = c.Walkers.Lifespan
	wc.MaxRotation = c.Walkers.MaxRotation
	wc.LaserSpeed = c.Walkers.LaserSpeed
	wc.GroundY = c.Scene.Height
	wc.LaserHeight = c.Scene.Height
	wc.Body.Start.Y = c.Scene.Height - 175
	return wc
}

// FrameInterval is the wall-clock time between runner frames
func (c *SimulationConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Runner.FrameRate)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads a configuration from a JSON or YAML file. Fields the
// file omits keep their default values.
func LoadConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file, as YAML when the extension
// says so and JSON otherwise
func SaveConfig(config *SimulationConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
