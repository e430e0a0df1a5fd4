package sim

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Stage is a phase of the impact sequence. Stages only move forward.
type Stage int

const (
	StageIdle Stage = iota
	StageApproach
	StageEntry
	StageImpact
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageApproach:
		return "approach"
	case StageEntry:
		return "entry"
	case StageImpact:
		return "impact"
	}
	return "unknown"
}

// State is the per-tick simulation state.
type State struct {
	Stage      Stage
	Progress   float64
	FrameCount uint64
}

// Tuning holds the scene constants of a run.
type Tuning struct {
	PlanetRadius    float64
	ImpactPoint     r3.Vec
	StartDistance   float64
	BowOffset       float64
	SpeedScale      float64 // progress per tick = speed / SpeedScale
	ProximityMargin float64 // entry when distance < radius + margin
	AltitudeScale   float64 // km per scene unit above the surface
	PlasmaStep      float64
	PlasmaMax       float64
	PlasmaGrowth    float64
	ShakeDecay      float64
	ShakeThreshold  float64
}

// DefaultTuning returns the stock scene: a radius 10 planet at the origin hit
// at (10,0,0) from 50 units out.
func DefaultTuning() Tuning {
	return Tuning{
		PlanetRadius:    10,
		ImpactPoint:     r3.Vec{X: 10},
		StartDistance:   50,
		BowOffset:       15,
		SpeedScale:      4000,
		ProximityMargin: 0.3,
		AltitudeScale:   637.1,
		PlasmaStep:      0.02,
		PlasmaMax:       0.9,
		PlasmaGrowth:    1.03,
		ShakeDecay:      0.95,
		ShakeThreshold:  0.01,
	}
}

// ProximityThreshold is the distance from the planet centre that starts entry.
func (t Tuning) ProximityThreshold() float64 {
	return t.PlanetRadius + t.ProximityMargin
}

// Session is one impact run: created at start, ticked each frame, discarded on restart.
type Session struct {
	planet   PlanetConfig
	impactor ImpactorConfig
	tuning   Tuning
	traj     *Trajectory
	pub      Publisher
	rng      *rand.Rand

	state    State
	position r3.Vec
	heading  r3.Vec
	altitude float64

	plasmaOpacity float64
	plasmaScale   float64

	meteorVisible bool
	report        *ImpactReport
	shake         *CameraShake
	shakeOffset   r3.Vec
}

// NewSession validates the configs and builds the trajectory with an azimuth
// drawn from rng. A nil publisher discards events.
func NewSession(planet PlanetConfig, impactor ImpactorConfig, tuning Tuning, rng *rand.Rand, pub Publisher) (*Session, error) {
	if err := planet.Validate(); err != nil {
		return nil, err
	}
	if err := impactor.Validate(); err != nil {
		return nil, err
	}
	if tuning.SpeedScale <= 0 {
		return nil, fmt.Errorf("speed scale %v: %w", tuning.SpeedScale, ErrInvalidConfiguration)
	}
	traj, err := NewTrajectory(TrajectoryParams{
		Target:        tuning.ImpactPoint,
		AngleDegrees:  impactor.AngleDegrees,
		StartDistance: tuning.StartDistance,
		BowOffset:     tuning.BowOffset,
		Azimuth:       RandomAzimuth(rng),
	})
	if err != nil {
		return nil, err
	}
	if pub == nil {
		pub = discard{}
	}
	s := &Session{
		planet:      planet,
		impactor:    impactor,
		tuning:      tuning,
		traj:        traj,
		pub:         pub,
		rng:         rng,
		plasmaScale: 1,
		shake:       NewCameraShake(tuning.ShakeDecay, tuning.ShakeThreshold),
	}
	s.position = traj.Position(0)
	s.heading = traj.Tangent(0)
	s.altitude = s.altitudeAt(s.position)
	return s, nil
}

// Start puts the meteor on the trajectory. Only the first call has an effect.
func (s *Session) Start() bool {
	if s.state.Stage != StageIdle {
		return false
	}
	s.state.Stage = StageApproach
	s.meteorVisible = true
	return true
}

// Tick advances the run by one frame.
func (s *Session) Tick() {
	s.state.FrameCount++

	if s.state.Stage == StageApproach || s.state.Stage == StageEntry {
		s.advance()
	}

	s.shakeOffset = s.shake.Step(s.rng)
}

func (s *Session) advance() {
	s.state.Progress = math.Min(1, s.state.Progress+s.impactor.SpeedKmPerSec/s.tuning.SpeedScale)
	s.position = s.traj.Position(s.state.Progress)
	s.heading = s.traj.Tangent(s.state.Progress)

	distance := r3.Norm(s.position)
	s.altitude = s.altitudeAt(s.position)
	s.publish(EventTelemetry)

	if s.state.Stage == StageApproach && distance < s.tuning.ProximityThreshold() {
		s.state.Stage = StageEntry
		s.publish(EventEntry)
	}

	if s.state.Stage == StageEntry {
		s.plasmaOpacity = math.Min(s.tuning.PlasmaMax, s.plasmaOpacity+s.tuning.PlasmaStep)
		s.plasmaScale *= s.tuning.PlasmaGrowth
	}

	if s.state.Progress >= 1 {
		s.impact()
	}
}

func (s *Session) impact() {
	s.state.Stage = StageImpact
	report := Analyze(s.impactor)
	s.report = &report
	s.meteorVisible = false
	s.shake.Trigger(report.ShakeIntensity())
	s.publish(EventImpact)
}

func (s *Session) altitudeAt(p r3.Vec) float64 {
	return math.Max(0, (r3.Norm(p)-s.tuning.PlanetRadius)*s.tuning.AltitudeScale)
}

func (s *Session) publish(t EventType) {
	s.pub.Publish(Event{
		Type:     t,
		Frame:    s.state.FrameCount,
		Stage:    s.state.Stage,
		Progress: s.state.Progress,
		Altitude: s.altitude,
		Speed:    s.impactor.SpeedKmPerSec,
		Position: s.position,
		Heading:  s.heading,
		Report:   s.report,
	})
}

func (s *Session) State() State             { return s.state }
func (s *Session) Stage() Stage             { return s.state.Stage }
func (s *Session) Planet() PlanetConfig     { return s.planet }
func (s *Session) Impactor() ImpactorConfig { return s.impactor }
func (s *Session) Tuning() Tuning           { return s.tuning }
func (s *Session) Trajectory() *Trajectory  { return s.traj }
func (s *Session) Position() r3.Vec         { return s.position }
func (s *Session) Heading() r3.Vec          { return s.heading }
func (s *Session) Altitude() float64        { return s.altitude }
func (s *Session) MeteorVisible() bool      { return s.meteorVisible }
func (s *Session) PlasmaOpacity() float64   { return s.plasmaOpacity }
func (s *Session) PlasmaScale() float64     { return s.plasmaScale }
func (s *Session) Shake() *CameraShake      { return s.shake }
func (s *Session) ShakeOffset() r3.Vec      { return s.shakeOffset }

// Report is nil until impact.
func (s *Session) Report() *ImpactReport { return s.report }

// MeteorScale is the meteor's display scale in scene units.
func (s *Session) MeteorScale() float64 {
	return s.impactor.SizeMeters / 10000
}
