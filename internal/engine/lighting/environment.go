package lighting

import (
	"fmt"

	"github.com/Faultbox/sandisle/internal/terrain"
)

// MaxFogDensity is the upper end of the fog density range.
const MaxFogDensity = 0.1

// TimeOfDay selects a lighting preset.
type TimeOfDay int

const (
	Day TimeOfDay = iota
	Dusk
	Night
	timesOfDay
)

var timeOfDayNames = [...]string{"day", "dusk", "night"}

func (t TimeOfDay) String() string {
	if t < 0 || t >= timesOfDay {
		return fmt.Sprintf("TimeOfDay(%d)", int(t))
	}
	return timeOfDayNames[t]
}

// ParseTimeOfDay parses a preset name as written in the config file.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for i, name := range timeOfDayNames {
		if s == name {
			return TimeOfDay(i), nil
		}
	}
	return Day, fmt.Errorf("unknown time of day %q", s)
}

// Preset is the sun position and sky colour of a time of day.
type Preset struct {
	SunAzimuth   float32
	SunElevation float32
	FogColor     [3]float32 // also used as the clear colour
}

var presets = [timesOfDay]Preset{
	Day:   {SunAzimuth: 45, SunElevation: 35.26, FogColor: [3]float32{0x87 / 255.0, 0xce / 255.0, 0xeb / 255.0}},
	Dusk:  {SunAzimuth: 250, SunElevation: 8, FogColor: [3]float32{0.98, 0.62, 0.45}},
	Night: {SunAzimuth: 135, SunElevation: 25, FogColor: [3]float32{0.05, 0.07, 0.15}},
}

// PresetFor returns the preset of t.
func PresetFor(t TimeOfDay) Preset {
	return presets[t]
}

// VisualsSink receives visual parameters. terrain.Grid implements it.
type VisualsSink interface {
	ApplyVisuals(terrain.VisualParams)
}

// Environment is the visual state owned by the application and pushed to
// the terrain whenever it changes.
type Environment struct {
	timeOfDay  TimeOfDay
	fogDensity float32
	wireframe  bool
	dirty      bool
}

// NewEnvironment creates an environment. fogDensity is clamped to
// [0, MaxFogDensity].
func NewEnvironment(t TimeOfDay, fogDensity float32, wireframe bool) *Environment {
	e := &Environment{timeOfDay: t, wireframe: wireframe, dirty: true}
	e.SetFogDensity(fogDensity)
	return e
}

func (e *Environment) TimeOfDay() TimeOfDay { return e.timeOfDay }
func (e *Environment) FogDensity() float32  { return e.fogDensity }
func (e *Environment) Wireframe() bool      { return e.wireframe }

// SetTimeOfDay switches preset.
func (e *Environment) SetTimeOfDay(t TimeOfDay) {
	if t == e.timeOfDay {
		return
	}
	e.timeOfDay = t
	e.dirty = true
}

// CycleTimeOfDay advances day -> dusk -> night -> day.
func (e *Environment) CycleTimeOfDay() {
	e.SetTimeOfDay((e.timeOfDay + 1) % timesOfDay)
}

// SetFogDensity sets the density, clamped to [0, MaxFogDensity].
func (e *Environment) SetFogDensity(d float32) {
	d = min(max(d, 0), MaxFogDensity)
	if d == e.fogDensity {
		return
	}
	e.fogDensity = d
	e.dirty = true
}

// AdjustFog changes the density by delta.
func (e *Environment) AdjustFog(delta float32) {
	e.SetFogDensity(e.fogDensity + delta)
}

// ToggleWireframe flips wireframe drawing.
func (e *Environment) ToggleWireframe() {
	e.wireframe = !e.wireframe
	e.dirty = true
}

// ClearColor is the sky colour behind the terrain.
func (e *Environment) ClearColor() [3]float32 {
	return presets[e.timeOfDay].FogColor
}

// Visuals returns the terrain inputs for the current state.
func (e *Environment) Visuals() terrain.VisualParams {
	p := presets[e.timeOfDay]
	return terrain.VisualParams{
		LightDirection: SunDirection(p.SunAzimuth, p.SunElevation),
		FogColor:       p.FogColor,
		FogDensity:     e.fogDensity,
		Wireframe:      e.wireframe,
	}
}

// Sync pushes the visuals to sink if anything changed since the last push
// and reports whether it did.
func (e *Environment) Sync(sink VisualsSink) bool {
	if !e.dirty {
		return false
	}
	sink.ApplyVisuals(e.Visuals())
	e.dirty = false
	return true
}
