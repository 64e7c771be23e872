package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed     = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen   = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth        = flag.Int("width", 0, "Window width")
	flagHeight       = flag.Int("height", 0, "Window height")
	flagSeed         = flag.Int64("seed", -1, "Terrain seed")
	flagViewDistance = flag.Float64("view-distance", 0, "Terrain view distance in world units")
	flagWireframe    = flag.Bool("wireframe", false, "Draw terrain as wireframe")
	flagWorkers      = flag.Int("workers", -1, "Chunk builder goroutines (0 builds inline)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Graphics.ShowFPS = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagSeed >= 0 {
		cfg.Terrain.Height.Seed = uint32(*flagSeed)
	}
	if *flagViewDistance > 0 {
		cfg.Terrain.ViewDistance = float32(*flagViewDistance)
	}
	if *flagWireframe {
		cfg.Lighting.Wireframe = true
	}
	if *flagWorkers >= 0 {
		cfg.Terrain.Workers = *flagWorkers
	}
}
