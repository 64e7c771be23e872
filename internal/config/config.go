// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/sandisle/internal/engine/lighting"
	"github.com/Faultbox/sandisle/internal/logger"
	"github.com/Faultbox/sandisle/internal/terrain"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Lighting LightingConfig `yaml:"lighting"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FPSLimit   int     `yaml:"fps_limit"`
	ShowFPS    bool    `yaml:"show_fps"`
	FOV        float32 `yaml:"fov"` // vertical, degrees
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

// TerrainConfig holds chunk streaming and height field settings.
type TerrainConfig struct {
	ChunkSize             float32              `yaml:"chunk_size"`
	ViewDistance          float32              `yaml:"view_distance"`
	EvictionMultiplier    float32              `yaml:"eviction_multiplier"`
	MaxUpdatesPerFrame    int                  `yaml:"max_updates_per_frame"`
	StreamInterval        time.Duration        `yaml:"stream_interval"`
	UpdateIntervalMin     time.Duration        `yaml:"update_interval_min"`
	UpdateIntervalPerUnit time.Duration        `yaml:"update_interval_per_unit"`
	BakeHeights           bool                 `yaml:"bake_heights"`
	Workers               int                  `yaml:"workers"`
	LODs                  terrain.LODTable     `yaml:"lods"`
	Height                terrain.HeightParams `yaml:"height"`
}

// LightingConfig holds environment settings.
type LightingConfig struct {
	TimeOfDay  string  `yaml:"time_of_day"` // day, dusk or night
	FogDensity float32 `yaml:"fog_density"`
	Wireframe  bool    `yaml:"wireframe"`
}

// CameraConfig holds first-person movement settings.
type CameraConfig struct {
	EyeHeight        float32 `yaml:"eye_height"`
	MoveSpeed        float32 `yaml:"move_speed"`
	Gravity          float32 `yaml:"gravity"`
	JumpSpeed        float32 `yaml:"jump_speed"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
	StartX           float32 `yaml:"start_x"`
	StartZ           float32 `yaml:"start_z"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	grid := terrain.DefaultOptions()
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			FOV:        75,
			Near:       0.1,
			Far:        1000,
		},
		Terrain: TerrainConfig{
			ChunkSize:             grid.ChunkSize,
			ViewDistance:          grid.ViewDistance,
			EvictionMultiplier:    grid.EvictionMultiplier,
			MaxUpdatesPerFrame:    grid.MaxUpdatesPerFrame,
			StreamInterval:        grid.StreamInterval,
			UpdateIntervalMin:     grid.UpdateIntervalMin,
			UpdateIntervalPerUnit: grid.UpdateIntervalPerUnit,
			Workers:               2,
			LODs:                  grid.LODs,
			Height:                grid.Height,
		},
		Lighting: LightingConfig{
			TimeOfDay:  "day",
			FogDensity: 0.01,
		},
		Camera: CameraConfig{
			EyeHeight:        1.7,
			MoveSpeed:        5,
			Gravity:          30,
			JumpSpeed:        10,
			MouseSensitivity: 0.002,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// GridOptions converts the terrain section to grid options. Allocator and
// Logger are left for the caller.
func (t TerrainConfig) GridOptions() terrain.Options {
	return terrain.Options{
		ChunkSize:             t.ChunkSize,
		ViewDistance:          t.ViewDistance,
		EvictionMultiplier:    t.EvictionMultiplier,
		MaxUpdatesPerFrame:    t.MaxUpdatesPerFrame,
		StreamInterval:        t.StreamInterval,
		UpdateIntervalMin:     t.UpdateIntervalMin,
		UpdateIntervalPerUnit: t.UpdateIntervalPerUnit,
		LODs:                  t.LODs,
		Height:                t.Height,
		BakeHeights:           t.BakeHeights,
		Workers:               t.Workers,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	g := c.Graphics
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return fmt.Errorf("graphics: invalid resolution %dx%d", g.Width, g.Height)
	case g.FOV <= 0 || g.FOV >= 180:
		return fmt.Errorf("graphics: fov %g out of range (0, 180)", g.FOV)
	case g.Near <= 0 || g.Far <= g.Near:
		return fmt.Errorf("graphics: invalid clip range near=%g far=%g", g.Near, g.Far)
	}

	if err := c.Terrain.GridOptions().Validate(); err != nil {
		return fmt.Errorf("terrain: %w", err)
	}

	if _, err := lighting.ParseTimeOfDay(c.Lighting.TimeOfDay); err != nil {
		return fmt.Errorf("lighting: %w", err)
	}
	if d := c.Lighting.FogDensity; d < 0 || d > lighting.MaxFogDensity {
		return fmt.Errorf("lighting: fog density %g out of range [0, %g]", d, lighting.MaxFogDensity)
	}

	if c.Camera.EyeHeight <= 0 || c.Camera.MoveSpeed <= 0 {
		return fmt.Errorf("camera: eye height and move speed must be positive")
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
