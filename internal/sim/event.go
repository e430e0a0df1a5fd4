package sim

import "gonum.org/v1/gonum/spatial/r3"

// EventType identifies what happened during a tick.
type EventType int

const (
	// EventTelemetry is published on every advancing tick.
	EventTelemetry EventType = iota
	// EventEntry is published once, on the approach to entry transition.
	EventEntry
	// EventImpact is published once and carries the report.
	EventImpact
	// EventRestartReady is published once the restart control may be shown.
	EventRestartReady
)

func (t EventType) String() string {
	switch t {
	case EventTelemetry:
		return "telemetry"
	case EventEntry:
		return "entry"
	case EventImpact:
		return "impact"
	case EventRestartReady:
		return "restart_ready"
	}
	return "unknown"
}

// Event is a read-only notification to the presentation, audio and scene collaborators.
type Event struct {
	Type     EventType
	Frame    uint64
	Stage    Stage
	Progress float64
	Altitude float64 // km
	Speed    float64 // km/s
	Position r3.Vec
	Heading  r3.Vec
	Report   *ImpactReport
}

// Publisher receives events synchronously on the tick thread.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(ev Event) { f(ev) }

type discard struct{}

func (discard) Publish(Event) {}
