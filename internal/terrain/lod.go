package terrain

import "fmt"

// LODLevel is one precomputed geometry resolution and the camera distance
// from which it applies.
type LODLevel struct {
	Resolution  int     `yaml:"resolution"`   // grid subdivisions per chunk edge
	MinDistance float32 `yaml:"min_distance"` // planar distance where this level starts
}

// LODTable is ordered by ascending MinDistance, finest level first.
type LODTable []LODLevel

// DefaultLODTable returns the two-level table of the sand island.
func DefaultLODTable() LODTable {
	return LODTable{
		{Resolution: 64, MinDistance: 0},
		{Resolution: 32, MinDistance: 24},
	}
}

// Select returns the index of the level with the largest MinDistance that
// is still <= distance. Distances below the first threshold use level 0.
func (t LODTable) Select(distance float32) int {
	lod := 0
	for i, level := range t {
		if distance < level.MinDistance {
			break
		}
		lod = i
	}
	return lod
}

// Validate checks the table is usable and that detail never increases with
// distance.
func (t LODTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: LOD table is empty", ErrInvalidOptions)
	}
	for i, level := range t {
		if level.Resolution <= 0 {
			return fmt.Errorf("%w: LOD %d resolution %d must be positive", ErrInvalidOptions, i, level.Resolution)
		}
		if level.MinDistance < 0 {
			return fmt.Errorf("%w: LOD %d min distance %g is negative", ErrInvalidOptions, i, level.MinDistance)
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if level.MinDistance <= prev.MinDistance {
			return fmt.Errorf("%w: LOD %d min distance %g not above LOD %d (%g)",
				ErrInvalidOptions, i, level.MinDistance, i-1, prev.MinDistance)
		}
		if level.Resolution > prev.Resolution {
			return fmt.Errorf("%w: LOD %d resolution %d finer than LOD %d (%d)",
				ErrInvalidOptions, i, level.Resolution, i-1, prev.Resolution)
		}
	}
	return nil
}
