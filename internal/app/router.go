package app

import "github.com/iburimskiy/impact-visualization/internal/sim"

// Handler processes events of the types it declares.
type Handler interface {
	// HandleEvent is called synchronously on the tick thread.
	HandleEvent(ev sim.Event)

	// EventTypes returns the event types this handler processes.
	EventTypes() []sim.EventType
}

// Router dispatches events to registered handlers in registration order.
type Router struct {
	handlers map[sim.EventType][]Handler
}

func NewRouter() *Router {
	return &Router{handlers: make(map[sim.EventType][]Handler)}
}

// Register adds a handler for its declared event types.
func (r *Router) Register(h Handler) {
	for _, t := range h.EventTypes() {
		r.handlers[t] = append(r.handlers[t], h)
	}
}

// Publish implements sim.Publisher.
func (r *Router) Publish(ev sim.Event) {
	for _, h := range r.handlers[ev.Type] {
		h.HandleEvent(ev)
	}
}

// HandlerCount returns the number of handlers registered for t.
func (r *Router) HandlerCount(t sim.EventType) int {
	return len(r.handlers[t])
}

// HandlerFunc adapts a function to Handler for the given types.
func HandlerFunc(fn func(sim.Event), types ...sim.EventType) Handler {
	return funcHandler{fn: fn, types: types}
}

type funcHandler struct {
	fn    func(sim.Event)
	types []sim.EventType
}

func (h funcHandler) HandleEvent(ev sim.Event)    { h.fn(ev) }
func (h funcHandler) EventTypes() []sim.EventType { return h.types }
