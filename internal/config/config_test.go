package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/sandisle/internal/terrain"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Graphics.FOV != 75 || cfg.Graphics.Near != 0.1 || cfg.Graphics.Far != 1000 {
		t.Errorf("expected projection 75/0.1/1000, got %v/%v/%v", cfg.Graphics.FOV, cfg.Graphics.Near, cfg.Graphics.Far)
	}

	// Test terrain defaults
	if cfg.Terrain.ChunkSize != 32 {
		t.Errorf("expected chunk size 32, got %v", cfg.Terrain.ChunkSize)
	}
	if cfg.Terrain.ViewDistance != 96 {
		t.Errorf("expected view distance 96, got %v", cfg.Terrain.ViewDistance)
	}
	if cfg.Terrain.MaxUpdatesPerFrame != 4 {
		t.Errorf("expected 4 updates per frame, got %d", cfg.Terrain.MaxUpdatesPerFrame)
	}
	if cfg.Terrain.StreamInterval != 100*time.Millisecond {
		t.Errorf("expected stream interval 100ms, got %v", cfg.Terrain.StreamInterval)
	}

	// Test lighting defaults
	if cfg.Lighting.TimeOfDay != "day" {
		t.Errorf("expected time of day 'day', got %s", cfg.Lighting.TimeOfDay)
	}
	if cfg.Lighting.FogDensity != 0.01 {
		t.Errorf("expected fog density 0.01, got %v", cfg.Lighting.FogDensity)
	}

	// Test camera defaults
	if cfg.Camera.EyeHeight != 1.7 || cfg.Camera.MoveSpeed != 5 {
		t.Errorf("unexpected camera defaults: %+v", cfg.Camera)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to be valid, got %v", err)
	}
}

func TestGridOptions(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Workers = 3
	cfg.Terrain.BakeHeights = true
	cfg.Terrain.Height.Seed = 99

	opts := cfg.Terrain.GridOptions()
	if opts.ChunkSize != 32 || opts.ViewDistance != 96 || opts.EvictionMultiplier != 1.75 {
		t.Errorf("unexpected streaming options: %+v", opts)
	}
	if opts.Workers != 3 || !opts.BakeHeights || opts.Height.Seed != 99 {
		t.Errorf("overrides not carried: workers=%d bake=%v seed=%d", opts.Workers, opts.BakeHeights, opts.Height.Seed)
	}
	if len(opts.LODs) != 2 {
		t.Errorf("expected 2 LOD levels, got %d", len(opts.LODs))
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("expected valid grid options, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, "resolution"},
		{"wide fov", func(c *Config) { c.Graphics.FOV = 180 }, "fov"},
		{"far before near", func(c *Config) { c.Graphics.Far = 0.05 }, "clip"},
		{"unknown time of day", func(c *Config) { c.Lighting.TimeOfDay = "noon" }, "time of day"},
		{"dense fog", func(c *Config) { c.Lighting.FogDensity = 0.5 }, "fog density"},
		{"negative fog", func(c *Config) { c.Lighting.FogDensity = -0.01 }, "fog density"},
		{"no eye height", func(c *Config) { c.Camera.EyeHeight = 0 }, "camera"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateTerrain(t *testing.T) {
	cfg := Default()
	cfg.Terrain.EvictionMultiplier = 1.05

	err := cfg.Validate()
	if !errors.Is(err, terrain.ErrInvalidOptions) {
		t.Errorf("expected terrain.ErrInvalidOptions, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fov: 60

terrain:
  view_distance: 128
  stream_interval: 250ms
  workers: 4
  bake_heights: true
  lods:
    - resolution: 64
      min_distance: 0
    - resolution: 32
      min_distance: 24
    - resolution: 8
      min_distance: 96
  height:
    seed: 1234
    octaves: 5

lighting:
  time_of_day: night
  fog_density: 0.03
  wireframe: true

camera:
  move_speed: 8

logging:
  level: "debug"
  log_file: "isle.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.FOV != 60 {
		t.Errorf("expected fov 60, got %v", cfg.Graphics.FOV)
	}
	if cfg.Graphics.Far != 1000 {
		t.Errorf("expected untouched far plane 1000, got %v", cfg.Graphics.Far)
	}

	if cfg.Terrain.ViewDistance != 128 {
		t.Errorf("expected view distance 128, got %v", cfg.Terrain.ViewDistance)
	}
	if cfg.Terrain.StreamInterval != 250*time.Millisecond {
		t.Errorf("expected stream interval 250ms, got %v", cfg.Terrain.StreamInterval)
	}
	if len(cfg.Terrain.LODs) != 3 || cfg.Terrain.LODs[2].Resolution != 8 {
		t.Errorf("expected 3 LOD levels ending at resolution 8, got %+v", cfg.Terrain.LODs)
	}
	if cfg.Terrain.Height.Seed != 1234 || cfg.Terrain.Height.Octaves != 5 {
		t.Errorf("expected seed 1234 and 5 octaves, got %+v", cfg.Terrain.Height)
	}
	if cfg.Terrain.Height.MaxDist != 50 {
		t.Errorf("expected untouched max dist 50, got %v", cfg.Terrain.Height.MaxDist)
	}

	if cfg.Lighting.TimeOfDay != "night" || cfg.Lighting.FogDensity != 0.03 || !cfg.Lighting.Wireframe {
		t.Errorf("unexpected lighting: %+v", cfg.Lighting)
	}
	if cfg.Camera.MoveSpeed != 8 || cfg.Camera.EyeHeight != 1.7 {
		t.Errorf("unexpected camera: %+v", cfg.Camera)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "isle.log" {
		t.Errorf("expected log file 'isle.log', got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected loaded config to be valid, got %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("lighting:\n  fog_density: 2\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadFile(configPath); err == nil {
		t.Error("expected validation error, got nil")
	}
	if cfg, err := LoadFile(""); err != nil || cfg.Terrain.ChunkSize != 32 {
		t.Errorf("expected defaults for empty path, got %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Height.Seed = 77
	cfg.Terrain.StreamInterval = 40 * time.Millisecond
	cfg.Lighting.TimeOfDay = "dusk"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if loaded.Terrain.Height.Seed != 77 {
		t.Errorf("expected seed 77, got %d", loaded.Terrain.Height.Seed)
	}
	if loaded.Terrain.StreamInterval != 40*time.Millisecond {
		t.Errorf("expected stream interval 40ms, got %v", loaded.Terrain.StreamInterval)
	}
	if loaded.Lighting.TimeOfDay != "dusk" {
		t.Errorf("expected dusk, got %s", loaded.Lighting.TimeOfDay)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Graphics.ShowFPS {
					t.Error("expected show_fps to be enabled with debug flag")
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "terrain flags",
			setup: func() {
				*flagSeed = 42
				*flagViewDistance = 160
				*flagWorkers = 0
				*flagWireframe = true
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.Height.Seed != 42 {
					t.Errorf("expected seed 42, got %d", cfg.Terrain.Height.Seed)
				}
				if cfg.Terrain.ViewDistance != 160 {
					t.Errorf("expected view distance 160, got %v", cfg.Terrain.ViewDistance)
				}
				if cfg.Terrain.Workers != 0 {
					t.Errorf("expected inline builds, got %d workers", cfg.Terrain.Workers)
				}
				if !cfg.Lighting.Wireframe {
					t.Error("expected wireframe with wireframe flag")
				}
			},
			teardown: func() {
				*flagSeed = -1
				*flagViewDistance = 0
				*flagWorkers = -1
				*flagWireframe = false
			},
		},
		{
			name:  "unset terrain flags",
			setup: func() {},
			verify: func(cfg *Config) {
				def := Default()
				if cfg.Terrain.Height.Seed != def.Terrain.Height.Seed || cfg.Terrain.Workers != def.Terrain.Workers {
					t.Error("expected unset flags to leave terrain defaults")
				}
			},
			teardown: func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
terrain:
  height:
    seed: 5
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	*flagSeed = 9
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
		*flagSeed = -1
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}

	if cfg.Terrain.Height.Seed != 9 {
		t.Errorf("expected seed 9 from flag, got %d", cfg.Terrain.Height.Seed)
	}
}
