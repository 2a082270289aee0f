package rigidstep

import (
	"time"

	"github.com/akmonengine/rigidstep/internal/enginelog"
	"github.com/go-gl/mathgl/mgl64"
)

// World holds one simulation's tunables, carried across steps by the
// caller (spec.md §6's World configuration table). Grounded field-for-
// field on original_source's tables/physics_world.rs, renamed to Go
// exported-field idiom; the teacher's per-body Workers knob is kept for
// the ambient concurrent-integration stage.
type World struct {
	TicksPerSecond float64
	TimeStep       float64
	SubStep        int
	PositionIterations int
	Gravity        mgl64.Vec3
	Precision      float64
	NormalizedPredictionDistance float64
	LengthUnit     float64
	BVHDilationFactor float64

	// Workers bounds how many goroutines internal/parallel may spawn for
	// per-body integration/recompute-velocity passes; 1 disables
	// parallelism. Not part of spec.md's own table — an ambient
	// concurrency knob in the teacher's own idiom (World.Workers).
	Workers int

	Debug DebugFlags

	// Logger receives Debugf/Warnf calls; defaults to a no-op when the
	// zero-value World is used directly instead of via DefaultWorld.
	Logger enginelog.Logger
}

// DebugFlags mirrors physics_world.rs's nine boolean debug switches. Each
// Enabled* accessor below additionally enables under the plain Debug
// flag or under the broad/narrow combined flag, exactly as the original
// OR's them.
type DebugFlags struct {
	Debug             bool
	Time              bool
	Triggers          bool
	BroadPhase        bool
	NarrowPhase       bool
	BroadNarrowPhase  bool
	Raycasts          bool
	Constraints       bool
	Substep           bool
}

func (d DebugFlags) EnabledBroadPhase() bool  { return d.Debug || d.BroadPhase || d.BroadNarrowPhase }
func (d DebugFlags) EnabledNarrowPhase() bool { return d.Debug || d.NarrowPhase || d.BroadNarrowPhase }
func (d DebugFlags) EnabledTime() bool        { return d.Debug || d.Time }
func (d DebugFlags) EnabledTriggers() bool    { return d.Debug || d.Triggers }
func (d DebugFlags) EnabledRaycasts() bool    { return d.Debug || d.Raycasts }
func (d DebugFlags) EnabledConstraints() bool { return d.Debug || d.Constraints }
func (d DebugFlags) EnabledSubstep() bool     { return d.Debug || d.Substep }

// DefaultWorld returns the exact defaults physics_world.rs declares via
// #[builder(default = ...)] (spec.md §6's configuration table).
func DefaultWorld() World {
	return World{
		TicksPerSecond:               60,
		TimeStep:                     1.0 / 60.0,
		SubStep:                      20,
		PositionIterations:           1,
		Gravity:                      mgl64.Vec3{0, -9.81, 0},
		Precision:                    1e-3,
		NormalizedPredictionDistance: 0.002,
		LengthUnit:                   1.0,
		BVHDilationFactor:            0.001,
		Workers:                      1,
		Logger:                       enginelog.NewNopLogger(),
	}
}

// PredictionDistance is normalized_prediction_distance * length_unit, per
// physics_world.rs's prediction_distance().
func (w World) PredictionDistance() float64 {
	return w.NormalizedPredictionDistance * w.LengthUnit
}

func (w World) logger() enginelog.Logger {
	if w.Logger == nil {
		return enginelog.NewNopLogger()
	}
	return w.Logger
}

func (w World) substepDuration() float64 {
	return w.TimeStep / float64(w.SubStep)
}

// Stopwatch times one named phase of a step and logs it through
// World.Logger when Debug.Time is set, the same conditional-timing shape
// as physics_world.rs's `stopwatch(name)` / `LogStopwatch` (SPEC_FULL.md
// §6.1) adapted from Rust's Option<LogStopwatch> into a Go value that is
// always safe to create and Stop. Timing is a logging side effect only —
// it never feeds back into the simulation, so it doesn't compromise
// StepWorld's determinism (spec.md §5/§8 invariant 7).
type Stopwatch struct {
	name    string
	enabled bool
	log     enginelog.Logger
	start   time.Time
}

// Stopwatch starts timing name.
func (w World) Stopwatch(name string) *Stopwatch {
	enabled := w.Debug.EnabledTime()
	var start time.Time
	if enabled {
		start = time.Now()
	}
	return &Stopwatch{name: name, enabled: enabled, log: w.logger(), start: start}
}

// Stop logs the elapsed duration if this stopwatch's timing is enabled.
func (s *Stopwatch) Stop() {
	if !s.enabled {
		return
	}
	s.log.Debugf("%s took %s", s.name, time.Since(s.start))
}
