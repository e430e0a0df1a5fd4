package app

import (
	"fmt"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// HUD collects the readouts shown over the simulation view. Both hosts draw
// from it.
type HUD struct {
	altitude     float64
	speed        float64
	stage        sim.Stage
	report       *sim.ImpactReport
	restartReady bool
}

func (h *HUD) EventTypes() []sim.EventType {
	return []sim.EventType{sim.EventTelemetry, sim.EventEntry, sim.EventImpact, sim.EventRestartReady}
}

func (h *HUD) HandleEvent(ev sim.Event) {
	switch ev.Type {
	case sim.EventTelemetry, sim.EventEntry:
		h.altitude = ev.Altitude
		h.speed = ev.Speed
		h.stage = ev.Stage
	case sim.EventImpact:
		h.altitude = 0
		h.stage = ev.Stage
		h.report = ev.Report
	case sim.EventRestartReady:
		h.restartReady = true
	}
}

// Reset clears the readouts for a new run.
func (h *HUD) Reset() { *h = HUD{} }

func (h *HUD) Stage() sim.Stage { return h.stage }

func (h *HUD) AltitudeText() string { return fmt.Sprintf("Altitude: %.0f km", h.altitude) }
func (h *HUD) SpeedText() string    { return fmt.Sprintf("Speed: %.0f km/s", h.speed) }

// ReportLines is empty until impact.
func (h *HUD) ReportLines() []string {
	if h.report == nil {
		return nil
	}
	return h.report.Lines()
}

func (h *HUD) RestartReady() bool { return h.restartReady }
