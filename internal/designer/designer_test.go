package designer

import (
	"errors"
	"image/color"
	"testing"

	"github.com/ncruces/zenity"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// scripted answers dialogs from fixed replies.
type scripted struct {
	list    string
	color   color.Color
	entries []string
	file    string
	err     error

	asked []string
}

func (s *scripted) dialogs() Dialogs {
	return Dialogs{
		List: func(text string, items []string, _ ...zenity.Option) (string, error) {
			s.asked = append(s.asked, text)
			return s.list, s.err
		},
		SelectColor: func(...zenity.Option) (color.Color, error) {
			s.asked = append(s.asked, "color")
			return s.color, s.err
		},
		Entry: func(text string, _ ...zenity.Option) (string, error) {
			s.asked = append(s.asked, text)
			if s.err != nil {
				return "", s.err
			}
			v := s.entries[0]
			s.entries = s.entries[1:]
			return v, nil
		},
		SelectFile: func(...zenity.Option) (string, error) {
			return s.file, s.err
		},
	}
}

func TestPromptPlanet(t *testing.T) {
	s := &scripted{
		list:    "Lava",
		color:   color.RGBA{R: 0xff, G: 0x45, A: 0xff},
		entries: []string{" 20000 ", "35"},
	}
	p, err := s.dialogs().PromptPlanet(sim.PlanetConfig{Type: sim.PlanetRocky, Diameter: 12742})
	if err != nil {
		t.Fatal(err)
	}
	want := sim.PlanetConfig{Type: sim.PlanetLava, Color: sim.RGB{R: 0xff, G: 0x45}, Diameter: 20000, Atmosphere: 35}
	if p != want {
		t.Fatalf("planet = %+v, want %+v", p, want)
	}
	if len(s.asked) != 4 {
		t.Fatalf("dialogs shown = %v", s.asked)
	}
}

func TestPromptPlanetCanceled(t *testing.T) {
	cur := sim.PlanetConfig{Type: sim.PlanetIcy}
	s := &scripted{err: zenity.ErrCanceled}
	p, err := s.dialogs().PromptPlanet(cur)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v", err)
	}
	if p != cur {
		t.Fatalf("canceled prompt changed the planet: %+v", p)
	}
}

func TestPromptPlanetRejectsUnknownType(t *testing.T) {
	s := &scripted{list: "Plasma"}
	if _, err := s.dialogs().PromptPlanet(sim.PlanetConfig{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestPromptImpactor(t *testing.T) {
	s := &scripted{entries: []string{"250", "30", "60"}}
	c, err := s.dialogs().PromptImpactor(sim.ImpactorConfig{SizeMeters: 50, SpeedKmPerSec: 20, AngleDegrees: 45})
	if err != nil {
		t.Fatal(err)
	}
	if c != (sim.ImpactorConfig{SizeMeters: 250, SpeedKmPerSec: 30, AngleDegrees: 60}) {
		t.Fatalf("impactor = %+v", c)
	}

	s = &scripted{entries: []string{"250", "200", "60"}}
	if _, err := s.dialogs().PromptImpactor(c); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out of range speed: err = %v", err)
	}
}

func TestPromptSample(t *testing.T) {
	s := &scripted{file: "/tmp/boom.wav"}
	path, err := s.dialogs().PromptSample([]string{"*.wav"})
	if err != nil || path != "/tmp/boom.wav" {
		t.Fatalf("path = %q, err = %v", path, err)
	}
	s = &scripted{err: zenity.ErrCanceled}
	if _, err := s.dialogs().PromptSample(nil); !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v", err)
	}
	boom := errors.New("no display")
	s = &scripted{err: boom}
	if _, err := s.dialogs().PromptSample(nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestParseBounded(t *testing.T) {
	cases := []struct {
		text string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" 90 ", 90, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"91", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := parseBounded(c.text, "angle", 0, 90)
		if c.ok != (err == nil) {
			t.Errorf("%q: err = %v", c.text, err)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%q: err = %v, want ErrInvalidInput", c.text, err)
		}
		if c.ok && got != c.want {
			t.Errorf("%q = %v, want %v", c.text, got, c.want)
		}
	}
}
