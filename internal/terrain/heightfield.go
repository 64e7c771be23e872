package terrain

import (
	"math"

	gmath "github.com/Faultbox/sandisle/pkg/math"
)

// HeightParams configures the island height function. The same values are
// uploaded to the terrain shader, which reproduces Height on the GPU.
type HeightParams struct {
	Seed            uint32  `yaml:"seed"`
	NoiseScale      float32 `yaml:"noise_scale"`
	HeightScale     float32 `yaml:"height_scale"`
	NoiseStrength   float32 `yaml:"noise_strength"`
	Octaves         int     `yaml:"octaves"`
	RippleAmplitude float32 `yaml:"ripple_amplitude"`
	RippleFrequency float32 `yaml:"ripple_frequency"`
	MaxDist         float32 `yaml:"max_dist"`  // distance from origin where the island has sunk to SeaFloor
	SeaFloor        float32 `yaml:"sea_floor"` // elevation of the submerged shoreline
}

// DefaultHeightParams returns the sand island used by the viewer.
func DefaultHeightParams() HeightParams {
	return HeightParams{
		Seed:            0,
		NoiseScale:      0.02,
		HeightScale:     10,
		NoiseStrength:   0.8,
		Octaves:         4,
		RippleAmplitude: 0.2,
		RippleFrequency: 0.1,
		MaxDist:         50,
		SeaFloor:        -5,
	}
}

// Height returns the terrain elevation at world (x, z). It is pure and safe
// to call from any goroutine.
func (p HeightParams) Height(x, z float32) float32 {
	fx, fz := float64(x), float64(z)

	h := p.fbm(fx*float64(p.NoiseScale), fz*float64(p.NoiseScale))
	h *= float64(p.HeightScale) * float64(p.NoiseStrength)

	rf := float64(p.RippleFrequency)
	h += math.Sin(fx*rf) * math.Cos(fz*rf) * float64(p.RippleAmplitude)

	slope := smoothstep(0, float64(p.MaxDist), math.Sqrt(fx*fx+fz*fz))
	return float32(mix(h, float64(p.SeaFloor), slope))
}

// Normal returns the surface normal at (x, z) from central differences.
func (p HeightParams) Normal(x, z float32) gmath.Vec3 {
	const eps = 0.05
	hL := p.Height(x-eps, z)
	hR := p.Height(x+eps, z)
	hD := p.Height(x, z-eps)
	hU := p.Height(x, z+eps)
	return gmath.Vec3{X: hL - hR, Y: 2 * eps, Z: hD - hU}.Normalize()
}

// Bounds returns a conservative elevation range for every (x, z). Lattice
// values are in [0,1), so fBm stays below the sum of octave amplitudes.
func (p HeightParams) Bounds() (lo, hi float32) {
	var amp, sum float32 = 0.5, 0
	for range p.Octaves {
		sum += amp
		amp *= 0.5
	}
	noiseHi := sum * p.HeightScale * p.NoiseStrength
	noiseLo := float32(0)
	if p.HeightScale*p.NoiseStrength < 0 {
		noiseLo, noiseHi = noiseHi, 0
	}
	ripple := abs32(p.RippleAmplitude)

	lo = min(noiseLo-ripple, p.SeaFloor)
	hi = max(noiseHi+ripple, p.SeaFloor)
	return lo, hi
}

// fbm sums Octaves of value noise, starting at amplitude 0.5 and doubling
// frequency while halving amplitude each octave.
func (p HeightParams) fbm(x, z float64) float64 {
	value := 0.0
	amplitude := 0.5
	frequency := 1.0
	for range p.Octaves {
		value += amplitude * p.valueNoise(x*frequency, z*frequency)
		amplitude *= 0.5
		frequency *= 2
	}
	return value
}

// valueNoise bilinearly blends the four surrounding lattice values with a
// smoothstep weight so the surface is continuous across lattice lines.
func (p HeightParams) valueNoise(x, z float64) float64 {
	ix, iz := math.Floor(x), math.Floor(z)
	fx, fz := x-ix, z-iz

	x0, z0 := int32(ix), int32(iz)
	a := p.lattice(x0, z0)
	b := p.lattice(x0+1, z0)
	c := p.lattice(x0, z0+1)
	d := p.lattice(x0+1, z0+1)

	ux := fx * fx * (3 - 2*fx)
	uz := fz * fz * (3 - 2*fz)
	return mix(mix(a, b, ux), mix(c, d, ux), uz)
}

// lattice maps an integer lattice point to [0,1) with 24 bits of precision,
// which float32 represents exactly; the shader uses the same integer mix.
func (p HeightParams) lattice(ix, iz int32) float64 {
	return float64(latticeHash(uint32(ix), uint32(iz), p.Seed)>>8) / (1 << 24)
}

func latticeHash(x, z, seed uint32) uint32 {
	h := x*0x8da6b343 ^ z*0xd8163841 ^ seed*0xcb1ab31f
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return h
}

func mix(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	t = math.Max(0, math.Min(1, t))
	return t * t * (3 - 2*t)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
