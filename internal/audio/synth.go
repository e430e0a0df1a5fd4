package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// C1 in Hz.
const noteC1 = 32.703195662574829

// brownNoise is an endless integrated white noise source.
type brownNoise struct {
	rng  *rand.Rand
	last float64
}

func newBrownNoise(rng *rand.Rand) *brownNoise {
	return &brownNoise{rng: rng}
}

func (n *brownNoise) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		white := n.rng.Float64()*2 - 1
		n.last = (n.last + 0.02*white) / 1.02
		v := n.last * 3.5
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (n *brownNoise) Err() error { return nil }

// dbRamp moves the volume of a streamer linearly in decibels from one level to
// another over a fixed number of samples, then holds the final level.
type dbRamp struct {
	vol      *effects.Volume
	from, to float64
	pos      int
	total    int
}

// rampChunk bounds how many samples share one volume step.
const rampChunk = 64

func newDBRamp(s beep.Streamer, fromDB, toDB float64, over time.Duration, rate beep.SampleRate) *dbRamp {
	r := &dbRamp{
		vol:   &effects.Volume{Streamer: s, Base: 10},
		from:  fromDB,
		to:    toDB,
		total: rate.N(over),
	}
	r.vol.Volume = fromDB / 20
	return r
}

// Level returns the current level in dB.
func (r *dbRamp) Level() float64 {
	if r.total <= 0 || r.pos >= r.total {
		return r.to
	}
	return r.from + (r.to-r.from)*float64(r.pos)/float64(r.total)
}

func (r *dbRamp) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		end := filled + rampChunk
		if end > len(samples) {
			end = len(samples)
		}
		r.vol.Volume = r.Level() / 20
		want := end - filled
		n, ok := r.vol.Stream(samples[filled:end])
		filled += n
		r.pos += n
		if !ok || n < want {
			return filled, filled > 0
		}
	}
	return filled, true
}

func (r *dbRamp) Err() error { return r.vol.Err() }

// membrane is a kick-drum style voice: a sine whose pitch falls exponentially
// from octaves×freq to freq, shaped by an attack/decay/sustain/release envelope.
type membrane struct {
	rate       float64
	freq       float64
	octaves    float64
	pitchDecay float64
	attack     float64
	decay      float64
	sustain    float64
	hold       float64
	release    float64
	gain       float64

	pos   int
	phase float64
}

func newImpactThump(rate beep.SampleRate) *membrane {
	return &membrane{
		rate:       float64(rate),
		freq:       noteC1,
		octaves:    10,
		pitchDecay: 0.08,
		attack:     0.001,
		decay:      0.8,
		sustain:    0.01,
		hold:       1,
		release:    2,
		gain:       0.8,
	}
}

// Duration is the total sounding time of the voice.
func (m *membrane) Duration() time.Duration {
	return time.Duration((m.hold + m.release) * float64(time.Second))
}

// frequency at t seconds after the trigger.
func (m *membrane) frequency(t float64) float64 {
	if t >= m.pitchDecay {
		return m.freq
	}
	start := m.freq * m.octaves
	return start * math.Pow(m.freq/start, t/m.pitchDecay)
}

// envelope amplitude at t seconds after the trigger.
func (m *membrane) envelope(t float64) float64 {
	level := func(t float64) float64 {
		if t < m.attack {
			return t / m.attack
		}
		k := (t - m.attack) / m.decay
		if k >= 1 {
			return m.sustain
		}
		return m.sustain + (1-m.sustain)*falloff(k)
	}
	if t < m.hold {
		return level(t)
	}
	k := (t - m.hold) / m.release
	if k >= 1 {
		return 0
	}
	return level(m.hold) * falloff(k)
}

// falloff decays exponentially from 1 at k=0 to exactly 0 at k=1.
func falloff(k float64) float64 {
	return (1 - k) * math.Pow(100, -k)
}

func (m *membrane) Stream(samples [][2]float64) (int, bool) {
	end := int(m.rate * (m.hold + m.release))
	for i := range samples {
		if m.pos >= end {
			return i, i > 0
		}
		t := float64(m.pos) / m.rate
		v := m.gain * m.envelope(t) * math.Sin(2*math.Pi*m.phase)
		samples[i][0] = v
		samples[i][1] = v
		m.phase += m.frequency(t) / m.rate
		m.phase -= math.Floor(m.phase)
		m.pos++
	}
	return len(samples), true
}

func (m *membrane) Err() error { return nil }
