package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

// Metrics exports the session as prometheus series.
type Metrics struct {
	events       *prometheus.CounterVec
	altitude     prometheus.Gauge
	progress     prometheus.Gauge
	impactEnergy prometheus.Histogram
	craterKm     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "impact",
				Name:      "events_total",
				Help:      "Simulation events published, by type",
			},
			[]string{"type"},
		),
		altitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "impact",
			Name:      "altitude_km",
			Help:      "Current impactor altitude above the surface",
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "impact",
			Name:      "trajectory_progress",
			Help:      "Normalized position along the trajectory",
		}),
		impactEnergy: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "impact",
			Name:      "energy_megatons",
			Help:      "Kinetic energy released per impact in megatons of TNT",
			Buckets:   prometheus.ExponentialBuckets(0.01, 10, 10),
		}),
		craterKm: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "impact",
			Name:      "crater_diameter_km",
			Help:      "Crater diameter of the last impact",
		}),
	}
	reg.MustRegister(m.events, m.altitude, m.progress, m.impactEnergy, m.craterKm)
	return m
}

// EventTypes implements app.Handler.
func (m *Metrics) EventTypes() []sim.EventType {
	return []sim.EventType{sim.EventTelemetry, sim.EventEntry, sim.EventImpact, sim.EventRestartReady}
}

// HandleEvent implements app.Handler.
func (m *Metrics) HandleEvent(ev sim.Event) {
	m.events.WithLabelValues(ev.Type.String()).Inc()
	switch ev.Type {
	case sim.EventTelemetry:
		m.altitude.Set(ev.Altitude)
		m.progress.Set(ev.Progress)
	case sim.EventImpact:
		m.altitude.Set(0)
		m.progress.Set(1)
		if ev.Report != nil {
			m.impactEnergy.Observe(ev.Report.MegatonsTNT)
			m.craterKm.Set(ev.Report.CraterDiameterKm)
		}
	}
}
