// Package audio renders the impact soundscape: a rising roar of brown noise
// during atmospheric entry and a low thump (or a user sample) at impact.
package audio

import (
	"math/rand"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/iburimskiy/impact-visualization/internal/config"
	"github.com/iburimskiy/impact-visualization/internal/logging"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

const (
	entryStartDB = -60
	entryEndDB   = -20
	entryRamp    = time.Second
)

// Output is the device the engine plays through. Play is called once with the
// engine's master streamer; Lock and Unlock guard mixer changes against the
// device callback.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// Speaker plays through the system audio device.
type Speaker struct{}

func (Speaker) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (Speaker) Play(s beep.Streamer) { speaker.Play(s) }
func (Speaker) Lock()                { speaker.Lock() }
func (Speaker) Unlock()              { speaker.Unlock() }

// Engine reacts to simulation events. If the output cannot be opened it runs
// silent and every event is a no-op.
type Engine struct {
	logger log.Logger
	out    Output
	rate   beep.SampleRate
	silent bool

	mixer  *beep.Mixer
	tap    *levelTap
	rng    *rand.Rand
	sample *beep.Buffer

	noise *beep.Ctrl
	ramp  *dbRamp

	mu    sync.Mutex
	meter meter
}

// New opens out at rate and starts the master mix. sample, if non-nil, replaces
// the synthesized thump at impact.
func New(logger log.Logger, out Output, rate beep.SampleRate, sample *beep.Buffer) *Engine {
	e := &Engine{
		logger: logging.Subsystem(logger, "audio"),
		out:    out,
		rate:   rate,
		mixer:  &beep.Mixer{},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sample: sample,
		meter:  meter{smoothing: config.SmoothingFactor},
	}
	e.tap = newLevelTap(e.mixer, config.AudioRingSize)

	if err := out.Init(rate, rate.N(time.Second/20)); err != nil {
		level.Warn(e.logger).Log("msg", "audio unavailable, running silent", "err", err)
		e.silent = true
		return e
	}
	out.Play(e.tap)
	level.Info(e.logger).Log("msg", "audio ready", "rate", int(rate), "sample", sample != nil)
	return e
}

// NewSilent returns a muted engine that never touches an audio device.
func NewSilent(logger log.Logger) *Engine {
	return &Engine{
		logger: logging.Subsystem(logger, "audio"),
		silent: true,
		mixer:  &beep.Mixer{},
		meter:  meter{smoothing: config.SmoothingFactor},
	}
}

func (e *Engine) Silent() bool          { return e.silent }
func (e *Engine) Rate() beep.SampleRate { return e.rate }

// SetSample replaces the impact sound; nil restores the synthesized thump.
func (e *Engine) SetSample(b *beep.Buffer) {
	if e.silent {
		return
	}
	e.out.Lock()
	e.sample = b
	e.out.Unlock()
}

// EventTypes implements app.Handler.
func (e *Engine) EventTypes() []sim.EventType {
	return []sim.EventType{sim.EventEntry, sim.EventImpact}
}

// HandleEvent implements app.Handler.
func (e *Engine) HandleEvent(ev sim.Event) {
	if e.silent {
		return
	}
	switch ev.Type {
	case sim.EventEntry:
		e.startEntryNoise()
	case sim.EventImpact:
		e.playImpact()
	}
}

func (e *Engine) startEntryNoise() {
	e.out.Lock()
	defer e.out.Unlock()

	if e.noise != nil {
		return
	}
	e.ramp = newDBRamp(newBrownNoise(e.rng), entryStartDB, entryEndDB, entryRamp, e.rate)
	e.noise = &beep.Ctrl{Streamer: e.ramp}
	e.mixer.Add(e.noise)
	level.Debug(e.logger).Log("msg", "entry noise", "from_db", entryStartDB, "to_db", entryEndDB)
}

func (e *Engine) playImpact() {
	e.out.Lock()
	defer e.out.Unlock()

	e.stopNoiseLocked()
	if e.sample != nil {
		e.mixer.Add(e.sample.Streamer(0, e.sample.Len()))
		level.Debug(e.logger).Log("msg", "impact sample", "samples", e.sample.Len())
		return
	}
	thump := newImpactThump(e.rate)
	e.mixer.Add(beep.Take(e.rate.N(thump.Duration()), thump))
	level.Debug(e.logger).Log("msg", "impact thump", "freq_hz", thump.freq)
}

func (e *Engine) stopNoiseLocked() {
	if e.noise == nil {
		return
	}
	// A nil streamer makes the Ctrl report drained, so the mixer drops it.
	e.noise.Streamer = nil
	e.noise = nil
	e.ramp = nil
}

// NoiseLevel reports the current entry noise level in dB and whether the noise
// is playing.
func (e *Engine) NoiseLevel() (float64, bool) {
	if e.silent {
		return 0, false
	}
	e.out.Lock()
	defer e.out.Unlock()
	if e.ramp == nil {
		return 0, false
	}
	return e.ramp.Level(), true
}

// Reset stops every sound, e.g. when the demo restarts.
func (e *Engine) Reset() {
	if e.silent {
		return
	}
	e.out.Lock()
	e.stopNoiseLocked()
	e.mixer.Clear()
	e.out.Unlock()
}

// Level returns a smoothed 0..1 loudness of the recent output for the HUD
// meter. Call it once per frame.
func (e *Engine) Level() float64 {
	if e.tap == nil {
		return 0
	}
	rms := e.tap.rms(2048)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meter.update(rms)
}
