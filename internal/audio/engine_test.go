package audio

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/go-kit/log"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// fakeOutput is an audio device the test pulls samples from by hand.
type fakeOutput struct {
	mu      sync.Mutex
	initErr error
	rate    beep.SampleRate
	master  beep.Streamer
}

func (o *fakeOutput) Init(rate beep.SampleRate, _ int) error {
	o.rate = rate
	return o.initErr
}
func (o *fakeOutput) Play(s beep.Streamer) { o.master = s }
func (o *fakeOutput) Lock()                { o.mu.Lock() }
func (o *fakeOutput) Unlock()              { o.mu.Unlock() }

func (o *fakeOutput) render(d time.Duration) [][2]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return pull(o.master, o.rate.N(d))
}

func TestEngineSilentWhenDeviceFails(t *testing.T) {
	out := &fakeOutput{initErr: errors.New("no device")}
	e := New(log.NewNopLogger(), out, testRate, nil)
	if !e.Silent() {
		t.Fatal("engine should be silent")
	}
	if out.master != nil {
		t.Fatal("silent engine started playback")
	}
	e.HandleEvent(sim.Event{Type: sim.EventEntry})
	e.HandleEvent(sim.Event{Type: sim.EventImpact})
	if _, on := e.NoiseLevel(); on {
		t.Fatal("silent engine reports noise")
	}
	e.Reset()

	if s := NewSilent(log.NewNopLogger()); !s.Silent() || s.Level() != 0 {
		t.Fatal("NewSilent engine not muted")
	}
}

func TestEngineEntryThenImpact(t *testing.T) {
	out := &fakeOutput{}
	e := New(log.NewNopLogger(), out, testRate, nil)
	if e.Silent() || out.master == nil {
		t.Fatal("engine did not start playback")
	}
	if got := e.EventTypes(); len(got) != 2 {
		t.Fatalf("event types = %v", got)
	}

	if p := peak(out.render(100 * time.Millisecond)); p != 0 {
		t.Fatalf("output before entry = %v", p)
	}

	e.HandleEvent(sim.Event{Type: sim.EventEntry})
	lvl, on := e.NoiseLevel()
	if !on || lvl != -60 {
		t.Fatalf("noise level = %v, %v", lvl, on)
	}
	out.render(2 * time.Second)
	if lvl, _ := e.NoiseLevel(); lvl != -20 {
		t.Fatalf("noise level after ramp = %v", lvl)
	}
	if e.Level() == 0 {
		t.Fatal("meter silent while noise plays")
	}

	e.HandleEvent(sim.Event{Type: sim.EventEntry})
	if lvl, _ := e.NoiseLevel(); lvl != -20 {
		t.Fatal("second entry restarted the noise")
	}

	e.HandleEvent(sim.Event{Type: sim.EventImpact})
	if _, on := e.NoiseLevel(); on {
		t.Fatal("noise still playing after impact")
	}
	if p := peak(out.render(200 * time.Millisecond)); p == 0 {
		t.Fatal("no thump at impact")
	}
	out.render(4 * time.Second)
	if p := peak(out.render(100 * time.Millisecond)); p != 0 {
		t.Fatalf("thump did not end: peak %v", p)
	}
}

func TestEngineReset(t *testing.T) {
	out := &fakeOutput{}
	e := New(log.NewNopLogger(), out, testRate, nil)
	e.HandleEvent(sim.Event{Type: sim.EventEntry})
	out.render(time.Second)
	e.Reset()
	if _, on := e.NoiseLevel(); on {
		t.Fatal("noise survived reset")
	}
	if p := peak(out.render(100 * time.Millisecond)); p != 0 {
		t.Fatalf("output after reset = %v", p)
	}
}

func writeWAV(t *testing.T, rate beep.SampleRate, n int, value float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "impact.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Take(n, constant(value)), format); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEngineImpactSample(t *testing.T) {
	buf, err := LoadSample(writeWAV(t, testRate, 400, 0.5), testRate)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 400 {
		t.Fatalf("sample length = %d", buf.Len())
	}

	out := &fakeOutput{}
	e := New(log.NewNopLogger(), out, testRate, buf)
	e.HandleEvent(sim.Event{Type: sim.EventImpact})
	samples := out.render(100 * time.Millisecond)
	if !scalar.EqualWithinAbs(samples[0][0], 0.5, 1e-3) || !scalar.EqualWithinAbs(samples[399][1], 0.5, 1e-3) {
		t.Fatalf("sample playback = %v .. %v", samples[0], samples[399])
	}
	if samples[400][0] != 0 {
		t.Fatalf("sample did not end: %v", samples[400])
	}

	e.SetSample(nil)
	e.HandleEvent(sim.Event{Type: sim.EventImpact})
	if p := peak(out.render(100 * time.Millisecond)); p == 0 || p == 0.5 {
		t.Fatalf("thump not restored: peak %v", p)
	}
}

func TestLoadSampleResamples(t *testing.T) {
	buf, err := LoadSample(writeWAV(t, testRate/2, 400, 0.25), testRate)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() < 700 || buf.Len() > 820 {
		t.Fatalf("resampled length = %d, want about 800", buf.Len())
	}
}

func TestLoadSampleErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "boom.ogg")
	if err := os.WriteFile(txt, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSample(txt, testRate); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("ogg: err = %v", err)
	}

	bad := filepath.Join(dir, "boom.WAV")
	if err := os.WriteFile(bad, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSample(bad, testRate); err == nil || errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("corrupt wav: err = %v", err)
	}

	if _, err := LoadSample(filepath.Join(dir, "missing.mp3"), testRate); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing: err = %v", err)
	}
}

func TestLevelTap(t *testing.T) {
	tap := newLevelTap(constant(0.5), 8)
	if tap.rms(4) != 0 {
		t.Fatal("empty tap has level")
	}
	pull(tap, 3)
	if got := tap.rms(100); got != 0.5 {
		t.Fatalf("rms = %v", got)
	}
	m := meter{smoothing: 0.5}
	if got := m.update(1); got != 0.5 {
		t.Fatalf("meter = %v", got)
	}
	if got := m.update(1); got != 0.75 {
		t.Fatalf("meter = %v", got)
	}
}
