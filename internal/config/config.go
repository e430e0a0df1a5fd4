package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

const (
	WindowWidth  = 1024
	WindowHeight = 640

	// Button dimensions
	ButtonWidth  = 140
	ButtonHeight = 40
	ButtonX      = WindowWidth/2 - ButtonWidth/2
	ButtonY      = WindowHeight - 90

	// Visualization parameters
	StarCount         = 160
	TrajectorySamples = 64
	PlanetSpin        = 0.0005
	CloudSpin         = 0.0007
	AudioRingSize     = 4096
	SmoothingFactor   = 0.6

	// Camera
	CameraFOV = 45.0
	CameraX   = -30.0
	CameraY   = 20.0
	CameraZ   = 50.0
)

// Slider bounds for the impact setup view.
const (
	SizeMin, SizeMax, SizeStep, SizeDefault     = 10.0, 10000.0, 10.0, 50.0
	SpeedMin, SpeedMax, SpeedStep, SpeedDefault = 11.0, 72.0, 1.0, 20.0
	AngleMin, AngleMax, AngleStep, AngleDefault = 0.0, 90.0, 1.0, 45.0
)

// ErrInvalidSettings is returned when a loaded setting is outside its domain.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the tunable values read from the config file and environment.
type Settings struct {
	Simulation sim.Tuning

	RestartDelay    time.Duration
	TransitionDelay time.Duration

	AudioEnabled bool
	SampleRate   int
	ImpactSample string

	TelemetryListen string
	TelemetryRate   float64
	TelemetryBurst  int

	LogLevel string
}

// Tuning returns the simulation constants.
func (s Settings) Tuning() sim.Tuning {
	return s.Simulation
}

func setDefaults(v *viper.Viper) {
	t := sim.DefaultTuning()
	v.SetDefault("simulation.planet_radius", t.PlanetRadius)
	v.SetDefault("simulation.impact_point.x", t.ImpactPoint.X)
	v.SetDefault("simulation.impact_point.y", t.ImpactPoint.Y)
	v.SetDefault("simulation.impact_point.z", t.ImpactPoint.Z)
	v.SetDefault("simulation.start_distance", t.StartDistance)
	v.SetDefault("simulation.bow_offset", t.BowOffset)
	v.SetDefault("simulation.speed_scale", t.SpeedScale)
	v.SetDefault("simulation.proximity_margin", t.ProximityMargin)
	v.SetDefault("simulation.altitude_scale", t.AltitudeScale)
	v.SetDefault("effects.plasma_step", t.PlasmaStep)
	v.SetDefault("effects.plasma_max", t.PlasmaMax)
	v.SetDefault("effects.plasma_growth", t.PlasmaGrowth)
	v.SetDefault("shake.decay", t.ShakeDecay)
	v.SetDefault("shake.threshold", t.ShakeThreshold)

	v.SetDefault("ui.restart_delay", 3*time.Second)
	v.SetDefault("ui.transition_delay", 500*time.Millisecond)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.impact_sample", "")

	v.SetDefault("telemetry.listen", "")
	v.SetDefault("telemetry.rate", 20.0)
	v.SetDefault("telemetry.burst", 5)

	v.SetDefault("log.level", "info")
}

// Default returns the settings used when no config file is present.
func Default() Settings {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// Load reads settings from path, or from impact.{toml,yaml,json} in the
// working directory when path is empty. A missing default file is not an
// error. IMPACT_* environment variables override file values, e.g.
// IMPACT_SIMULATION_SPEED_SCALE.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("impact")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("impact")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	s := fromViper(v)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func fromViper(v *viper.Viper) Settings {
	return Settings{
		Simulation: sim.Tuning{
			PlanetRadius: v.GetFloat64("simulation.planet_radius"),
			ImpactPoint: r3.Vec{
				X: v.GetFloat64("simulation.impact_point.x"),
				Y: v.GetFloat64("simulation.impact_point.y"),
				Z: v.GetFloat64("simulation.impact_point.z"),
			},
			StartDistance:   v.GetFloat64("simulation.start_distance"),
			BowOffset:       v.GetFloat64("simulation.bow_offset"),
			SpeedScale:      v.GetFloat64("simulation.speed_scale"),
			ProximityMargin: v.GetFloat64("simulation.proximity_margin"),
			AltitudeScale:   v.GetFloat64("simulation.altitude_scale"),
			PlasmaStep:      v.GetFloat64("effects.plasma_step"),
			PlasmaMax:       v.GetFloat64("effects.plasma_max"),
			PlasmaGrowth:    v.GetFloat64("effects.plasma_growth"),
			ShakeDecay:      v.GetFloat64("shake.decay"),
			ShakeThreshold:  v.GetFloat64("shake.threshold"),
		},
		RestartDelay:    v.GetDuration("ui.restart_delay"),
		TransitionDelay: v.GetDuration("ui.transition_delay"),
		AudioEnabled:    v.GetBool("audio.enabled"),
		SampleRate:      v.GetInt("audio.sample_rate"),
		ImpactSample:    v.GetString("audio.impact_sample"),
		TelemetryListen: v.GetString("telemetry.listen"),
		TelemetryRate:   v.GetFloat64("telemetry.rate"),
		TelemetryBurst:  v.GetInt("telemetry.burst"),
		LogLevel:        v.GetString("log.level"),
	}
}

// Validate checks every setting the simulation divides by or compares against.
func (s Settings) Validate() error {
	t := s.Simulation
	checks := []struct {
		ok   bool
		name string
		val  any
	}{
		{positive(t.PlanetRadius), "simulation.planet_radius", t.PlanetRadius},
		{onSurface(t.ImpactPoint, t.PlanetRadius), "simulation.impact_point", t.ImpactPoint},
		{positive(t.StartDistance), "simulation.start_distance", t.StartDistance},
		{nonNegative(t.BowOffset), "simulation.bow_offset", t.BowOffset},
		{positive(t.SpeedScale), "simulation.speed_scale", t.SpeedScale},
		{nonNegative(t.ProximityMargin), "simulation.proximity_margin", t.ProximityMargin},
		{positive(t.AltitudeScale), "simulation.altitude_scale", t.AltitudeScale},
		{nonNegative(t.PlasmaStep), "effects.plasma_step", t.PlasmaStep},
		{t.PlasmaMax >= 0 && t.PlasmaMax <= 1, "effects.plasma_max", t.PlasmaMax},
		{finite(t.PlasmaGrowth) && t.PlasmaGrowth >= 1, "effects.plasma_growth", t.PlasmaGrowth},
		{t.ShakeDecay > 0 && t.ShakeDecay < 1, "shake.decay", t.ShakeDecay},
		{positive(t.ShakeThreshold), "shake.threshold", t.ShakeThreshold},
		{s.RestartDelay >= 0, "ui.restart_delay", s.RestartDelay},
		{s.TransitionDelay >= 0, "ui.transition_delay", s.TransitionDelay},
		{s.SampleRate > 0, "audio.sample_rate", s.SampleRate},
		{positive(s.TelemetryRate), "telemetry.rate", s.TelemetryRate},
		{s.TelemetryBurst > 0, "telemetry.burst", s.TelemetryBurst},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%s = %v: %w", c.name, c.val, ErrInvalidSettings)
		}
	}
	return nil
}

func finite(v float64) bool      { return !math.IsNaN(v) && !math.IsInf(v, 0) }
func positive(v float64) bool    { return finite(v) && v > 0 }
func nonNegative(v float64) bool { return finite(v) && v >= 0 }

// onSurface reports whether p lies on the sphere of radius r at the origin.
// A point off the surface would leave a nonzero altitude at impact.
func onSurface(p r3.Vec, r float64) bool {
	n := r3.Norm(p)
	return positive(n) && math.Abs(n-r) <= 1e-6*r
}
