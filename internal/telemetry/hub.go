// Package telemetry broadcasts the local session to read-only observers over
// websocket and exports it as prometheus metrics.
package telemetry

import (
	"encoding/json"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/iburimskiy/impact-visualization/internal/logging"
	"github.com/iburimskiy/impact-visualization/internal/sim"
)

const sendBuffer = 32

// Frame is the JSON message sent to observers for every event.
type Frame struct {
	Type          string     `json:"type"`
	Frame         uint64     `json:"frame"`
	Stage         string     `json:"stage"`
	Progress      float64    `json:"progress"`
	AltitudeKm    float64    `json:"altitude_km"`
	SpeedKmPerSec float64    `json:"speed_kms"`
	Position      [3]float64 `json:"position"`
	Heading       [3]float64 `json:"heading"`
	Report        *Report    `json:"report,omitempty"`
}

// Report is the impact analysis as served to observers.
type Report struct {
	MassKg           float64 `json:"mass_kg"`
	VelocityMPerSec  float64 `json:"velocity_ms"`
	EnergyJoules     float64 `json:"energy_j"`
	MegatonsTNT      float64 `json:"megatons"`
	CraterDiameterKm float64 `json:"crater_km"`
}

func newReport(r *sim.ImpactReport) *Report {
	if r == nil {
		return nil
	}
	return &Report{
		MassKg:           r.MassKg,
		VelocityMPerSec:  r.VelocityMetersPerS,
		EnergyJoules:     r.KineticEnergyJoules,
		MegatonsTNT:      r.MegatonsTNT,
		CraterDiameterKm: r.CraterDiameterKm,
	}
}

// NewFrame converts a simulation event to its wire form.
func NewFrame(ev sim.Event) Frame {
	return Frame{
		Type:          ev.Type.String(),
		Frame:         ev.Frame,
		Stage:         ev.Stage.String(),
		Progress:      ev.Progress,
		AltitudeKm:    ev.Altitude,
		SpeedKmPerSec: ev.Speed,
		Position:      [3]float64{ev.Position.X, ev.Position.Y, ev.Position.Z},
		Heading:       [3]float64{ev.Heading.X, ev.Heading.Y, ev.Heading.Z},
		Report:        newReport(ev.Report),
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to connected observers. Telemetry frames are throttled
// by a token bucket; stage events are always sent. An observer that falls
// behind by more than its send buffer is disconnected.
type Hub struct {
	logger  log.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	clients map[*client]struct{}
	report  *Report
	closed  bool
}

func NewHub(logger log.Logger, perSecond float64, burst int) *Hub {
	return &Hub{
		logger:  logging.Subsystem(logger, "telemetry"),
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		clients: make(map[*client]struct{}),
	}
}

// EventTypes implements app.Handler.
func (h *Hub) EventTypes() []sim.EventType {
	return []sim.EventType{sim.EventTelemetry, sim.EventEntry, sim.EventImpact, sim.EventRestartReady}
}

// HandleEvent implements app.Handler. It never blocks the tick thread.
func (h *Hub) HandleEvent(ev sim.Event) {
	if ev.Type == sim.EventTelemetry && !h.limiter.Allow() {
		return
	}
	f := NewFrame(ev)
	msg, err := json.Marshal(f)
	if err != nil {
		level.Error(h.logger).Log("msg", "encode frame", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if ev.Type == sim.EventImpact {
		h.report = f.Report
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			level.Warn(h.logger).Log("msg", "observer too slow, dropping", "remote", c.conn.RemoteAddr())
			h.dropLocked(c)
		}
	}
}

// Reset forgets the last report, e.g. when the demo restarts.
func (h *Hub) Reset() {
	h.mu.Lock()
	h.report = nil
	h.mu.Unlock()
}

// LastReport returns the report of the most recent impact, if any.
func (h *Hub) LastReport() (Report, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.report == nil {
		return Report{}, false
	}
	return *h.report, true
}

// Clients returns the number of connected observers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve attaches an upgraded connection and blocks until it closes.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	level.Info(h.logger).Log("msg", "observer connected", "remote", conn.RemoteAddr(), "observers", n)

	go h.writer(c)

	// Observers never send anything meaningful; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
	level.Info(h.logger).Log("msg", "observer disconnected", "remote", conn.RemoteAddr())
}

func (h *Hub) writer(c *client) {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			level.Debug(h.logger).Log("msg", "write failed", "remote", c.conn.RemoteAddr(), "err", err)
			break
		}
	}
	c.conn.Close()
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Close disconnects every observer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}
