package terrain

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap/zaptest"

	gmath "github.com/Faultbox/sandisle/pkg/math"
)

// testAllocator records every geometry it hands out and fails the
// allocations whose 1-based call number is in failOn.
type testAllocator struct {
	calls      int
	failOn     map[int]bool
	geometries []*CPUGeometry
}

func (a *testAllocator) Allocate(mesh *Mesh) (Geometry, error) {
	a.calls++
	if a.failOn[a.calls] {
		return nil, errors.New("out of video memory")
	}
	g := &CPUGeometry{Mesh: mesh}
	a.geometries = append(a.geometries, g)
	return g, nil
}

func (a *testAllocator) live() int {
	n := 0
	for _, g := range a.geometries {
		if !g.Released() {
			n++
		}
	}
	return n
}

// testOptions is the default configuration with coarse meshes.
func testOptions(t *testing.T) Options {
	opts := DefaultOptions()
	opts.LODs = LODTable{{Resolution: 8, MinDistance: 0}, {Resolution: 4, MinDistance: 24}}
	opts.Logger = zaptest.NewLogger(t)
	return opts
}

func newTestGrid(t *testing.T, mutate func(*Options)) *Grid {
	t.Helper()
	opts := testOptions(t)
	if mutate != nil {
		mutate(&opts)
	}
	g, err := NewGrid(opts)
	if err != nil {
		t.Fatalf("NewGrid() = %v", err)
	}
	t.Cleanup(g.Dispose)
	return g
}

// topDownView looks straight down from 200 units above (x, z). The frustum
// covers every chunk the grid can hold.
func topDownView(x, z float32) View {
	eye := gmath.Vec3{X: x, Y: 200, Z: z}
	return View{
		Position: eye,
		ViewProj: gmath.Perspective(float32(math.Pi/2), 1, 0.1, 1000).
			Mul(gmath.LookAt(eye, gmath.Vec3{X: x, Y: 0, Z: z}, gmath.Vec3{X: 0, Y: 0, Z: -1})),
	}
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
