package app

import (
	"testing"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

func TestHUD(t *testing.T) {
	var h HUD
	if h.ReportLines() != nil || h.RestartReady() {
		t.Fatal("fresh HUD not empty")
	}

	h.HandleEvent(sim.Event{Type: sim.EventTelemetry, Stage: sim.StageApproach, Altitude: 25484.4, Speed: 20})
	if h.AltitudeText() != "Altitude: 25484 km" || h.SpeedText() != "Speed: 20 km/s" {
		t.Fatalf("readouts = %q %q", h.AltitudeText(), h.SpeedText())
	}

	r := sim.Analyze(sim.ImpactorConfig{SizeMeters: 50, SpeedKmPerSec: 20, AngleDegrees: 45})
	h.HandleEvent(sim.Event{Type: sim.EventImpact, Stage: sim.StageImpact, Speed: 20, Report: &r})
	lines := h.ReportLines()
	if len(lines) != 4 || lines[1] != "Impact Energy (J): 1.96e+16" || lines[2] != "Impact Energy (MT): 4.69" {
		t.Fatalf("report = %q", lines)
	}
	if h.AltitudeText() != "Altitude: 0 km" || h.Stage() != sim.StageImpact {
		t.Fatalf("after impact: %q %v", h.AltitudeText(), h.Stage())
	}

	h.HandleEvent(sim.Event{Type: sim.EventRestartReady})
	if !h.RestartReady() {
		t.Fatal("restart not ready")
	}
	h.Reset()
	if h.RestartReady() || h.ReportLines() != nil || h.Stage() != sim.StageIdle {
		t.Fatal("reset left state behind")
	}
}
