package terrain

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Options configures a Grid.
type Options struct {
	ChunkSize          float32
	ViewDistance       float32
	EvictionMultiplier float32 // chunks further than ViewDistance*EvictionMultiplier are evicted
	MaxUpdatesPerFrame int

	// StreamInterval gates the streaming and visibility pass inside Tick.
	StreamInterval time.Duration

	// A chunk advances its clock at most every
	// max(UpdateIntervalMin, distance*UpdateIntervalPerUnit).
	UpdateIntervalMin     time.Duration
	UpdateIntervalPerUnit time.Duration

	LODs   LODTable
	Height HeightParams

	// BakeHeights displaces chunk meshes on the CPU instead of leaving the
	// flat grid for a displacing vertex stage.
	BakeHeights bool
	// Workers > 0 builds chunk meshes on a worker pool.
	Workers int

	Allocator GeometryAllocator
	Logger    *zap.Logger
}

// DefaultOptions returns the sand island configuration.
func DefaultOptions() Options {
	return Options{
		ChunkSize:             32,
		ViewDistance:          96,
		EvictionMultiplier:    1.75,
		MaxUpdatesPerFrame:    4,
		StreamInterval:        100 * time.Millisecond,
		UpdateIntervalMin:     100 * time.Millisecond,
		UpdateIntervalPerUnit: 10 * time.Millisecond,
		LODs:                  DefaultLODTable(),
		Height:                DefaultHeightParams(),
	}
}

// Validate reports the first invalid setting.
func (o Options) Validate() error {
	switch {
	case o.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size %g must be positive", ErrInvalidOptions, o.ChunkSize)
	case o.ViewDistance <= 0:
		return fmt.Errorf("%w: view distance %g must be positive", ErrInvalidOptions, o.ViewDistance)
	case o.EvictionMultiplier <= 1:
		return fmt.Errorf("%w: eviction multiplier %g must exceed 1", ErrInvalidOptions, o.EvictionMultiplier)
	case o.MaxUpdatesPerFrame < 0:
		return fmt.Errorf("%w: max updates per frame %d is negative", ErrInvalidOptions, o.MaxUpdatesPerFrame)
	case o.StreamInterval < 0:
		return fmt.Errorf("%w: stream interval %s is negative", ErrInvalidOptions, o.StreamInterval)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidOptions, o.Workers)
	case o.Height.Octaves < 1:
		return fmt.Errorf("%w: octaves %d must be at least 1", ErrInvalidOptions, o.Height.Octaves)
	case o.Height.MaxDist <= 0:
		return fmt.Errorf("%w: max dist %g must be positive", ErrInvalidOptions, o.Height.MaxDist)
	}

	// The streaming band is a square, so a loaded chunk center can sit up to
	// (ViewDistance+ChunkSize/2)*sqrt(2) away. Eviction must not trigger
	// inside that reach or corner chunks thrash.
	loadReach := (float64(o.ViewDistance) + float64(o.ChunkSize)/2) * math.Sqrt2
	if evict := float64(o.ViewDistance) * float64(o.EvictionMultiplier); evict < loadReach {
		return fmt.Errorf("%w: eviction distance %.2f below load reach %.2f", ErrInvalidOptions, evict, loadReach)
	}

	return o.LODs.Validate()
}

func (o Options) evictDistance() float32 {
	return o.ViewDistance * o.EvictionMultiplier
}
