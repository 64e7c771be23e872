// Package lighting provides the sun and the fog environment that drives
// terrain shading.
package lighting

import (
	"math"

	gmath "github.com/Faultbox/sandisle/pkg/math"
)

// SunDirection converts azimuth/elevation angles to a light direction vector.
// Azimuth is rotation around the Y axis in degrees (0 faces +Z), elevation
// is degrees above the horizon.
// Returns a normalized direction vector pointing towards the sun.
func SunDirection(azimuth, elevation float32) gmath.Vec3 {
	// Convert degrees to radians
	azRad := float64(azimuth) * math.Pi / 180.0
	elRad := float64(elevation) * math.Pi / 180.0

	// Spherical to Cartesian conversion
	return gmath.Vec3{
		X: float32(math.Cos(elRad) * math.Sin(azRad)),
		Y: float32(math.Sin(elRad)),
		Z: float32(math.Cos(elRad) * math.Cos(azRad)),
	}
}
