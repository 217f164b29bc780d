// cmd/walker/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-walker/pkg/config"
	"github.com/opd-ai/go-walker/pkg/logging"
)

func main() {
	// The terminal renderer owns stdout.
	logger := logging.NewLoggerTo(os.Stderr)
	ctx := logging.WithRunID(context.Background(), logging.GenerateRunID())

	configPath := flag.String("config", "walker.yaml", "Path to configuration file (.yaml, .yml or .json)")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	scene := flag.String("scene", "", "Scene to simulate: walkers, cars, chain, cloth or pile")
	renderer := flag.String("renderer", "", "Renderer: terminal, engo or none")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after this many steps (0 runs until interrupted)")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, *configPath, logger)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}
	applyFlags(cfg, *scene, *renderer, *maxTicks)
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

// loadConfig reads path, falling back to the defaults when it does not
// exist.
func loadConfig(ctx context.Context, path string, logger *logging.Logger) (*config.SimulationConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

// applyFlags lets command-line flags win over file and environment.
func applyFlags(cfg *config.SimulationConfig, scene, renderer string, maxTicks uint64) {
	if scene != "" {
		cfg.Scene.Name = scene
	}
	if renderer != "" {
		cfg.Render.Mode = renderer
	}
	if maxTicks > 0 {
		cfg.Runner.MaxTicks = maxTicks
	}
}
