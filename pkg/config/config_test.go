package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/go-walker/pkg/physics"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if got, want := config.ToPhysics(), physics.DefaultConfig(); got != want {
		t.Errorf("ToPhysics() = %+v, want %+v", got, want)
	}
	if config.Scene.Name != WalkerScene {
		t.Errorf("Scene.Name = %q, want %q", config.Scene.Name, WalkerScene)
	}
	if got := config.FrameInterval(); got != time.Second/60 {
		t.Errorf("FrameInterval() = %v, want %v", got, time.Second/60)
	}
}

func TestToWalker_FollowsSceneHeight(t *testing.T) {
	config := DefaultConfig()
	config.Scene.Height = 600
	config.Walkers.Population = 3

	wc := config.ToWalker()

	if wc.Size != 3 {
		t.Errorf("Size = %d, want 3", wc.Size)
	}
	if wc.GroundY != 600 || wc.Body.Start.Y != 425 {
		t.Errorf("GroundY = %v, Start.Y = %v; want 600, 425", wc.GroundY, wc.Body.Start.Y)
	}
	if err := wc.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestToBreaker(t *testing.T) {
	config := DefaultConfig()
	config.Breaker.TimeoutSeconds = 1.5

	bs := config.ToBreaker()

	if bs.Timeout != 1500*time.Millisecond {
		t.Errorf("Timeout = %v, want 1.5s", bs.Timeout)
	}
	if bs.MaxConsecutiveFails != config.Breaker.MaxConsecutiveFails {
		t.Errorf("MaxConsecutiveFails = %d, want %d", bs.MaxConsecutiveFails, config.Breaker.MaxConsecutiveFails)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
	}{
		{
			name:     "json",
			file:     "config.json",
			contents: `{"engine": {"gravityY": 500}, "scene": {"name": "cloth"}}`,
		},
		{
			name:     "yaml",
			file:     "config.yaml",
			contents: "engine:\n  gravityY: 500\nscene:\n  name: cloth\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if config.Engine.GravityY != 500 {
				t.Errorf("GravityY = %v, want 500", config.Engine.GravityY)
			}
			if config.Scene.Name != "cloth" {
				t.Errorf("Scene.Name = %q, want cloth", config.Scene.Name)
			}
			if config.Engine.Timestep != DefaultConfig().Engine.Timestep {
				t.Errorf("Timestep = %v, want default kept", config.Engine.Timestep)
			}
			if err := config.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing_file", filepath.Join(dir, "missing.json")},
		{"malformed", broken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(tt.path); err == nil {
				t.Error("LoadConfig() error = nil")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, file := range []string{"out.json", "out.yml"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), file)
			config := DefaultConfig()
			config.Walkers.Population = 7
			config.Render.Mode = "none"

			if err := SaveConfig(config, path); err != nil {
				t.Fatalf("SaveConfig() error = %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if *loaded != *config {
				t.Errorf("round trip = %+v, want %+v", loaded, config)
			}
		})
	}
}
