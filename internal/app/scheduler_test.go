package app

import (
	"testing"
	"time"

	"github.com/iburimskiy/impact-visualization/internal/sim"
)

func TestDeferredFiresOnce(t *testing.T) {
	s := NewScheduler()
	calls := 0
	d := s.After(100*time.Millisecond, func() { calls++ })
	if d.FireAt() != 100*time.Millisecond {
		t.Fatalf("fire at = %v", d.FireAt())
	}

	s.Tick(50 * time.Millisecond)
	if calls != 0 || s.Pending() != 1 {
		t.Fatalf("fired early: calls=%d pending=%d", calls, s.Pending())
	}
	s.Tick(50 * time.Millisecond)
	if calls != 1 || !d.Fired() {
		t.Fatalf("not fired at deadline: calls=%d", calls)
	}
	s.Tick(time.Second)
	if calls != 1 || s.Pending() != 0 {
		t.Fatalf("fired again: calls=%d", calls)
	}
	if d.Cancel() {
		t.Fatal("cancel after fire should report false")
	}
}

func TestDeferredCancel(t *testing.T) {
	s := NewScheduler()
	fired := false
	d := s.After(time.Millisecond, func() { fired = true })
	if !d.Cancel() {
		t.Fatal("cancel of pending task failed")
	}
	if d.Cancel() {
		t.Fatal("second cancel should report false")
	}
	s.Tick(time.Second)
	if fired || !d.Cancelled() || s.Pending() != 0 {
		t.Fatal("cancelled task fired")
	}
}

func TestDeferredOrderAndTickers(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.After(30*time.Millisecond, func() { order = append(order, "late") })
	s.After(10*time.Millisecond, func() { order = append(order, "early") })
	s.OnTick(func(frame uint64) { order = append(order, "tick") })

	if f := s.Tick(time.Second); f != 1 {
		t.Fatalf("frame = %d", f)
	}
	want := []string{"early", "late", "tick"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v", order)
		}
	}
	if s.Now() != time.Second || s.Frame() != 1 {
		t.Fatalf("now=%v frame=%d", s.Now(), s.Frame())
	}
}

func TestNegativeDeltaIgnored(t *testing.T) {
	s := NewScheduler()
	s.Tick(-time.Second)
	if s.Now() != 0 {
		t.Fatalf("clock went backwards: %v", s.Now())
	}
}

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()
	var got []string
	r.Register(HandlerFunc(func(ev sim.Event) { got = append(got, "a:"+ev.Type.String()) }, sim.EventEntry, sim.EventImpact))
	r.Register(HandlerFunc(func(ev sim.Event) { got = append(got, "b:"+ev.Type.String()) }, sim.EventImpact))

	r.Publish(sim.Event{Type: sim.EventTelemetry})
	r.Publish(sim.Event{Type: sim.EventImpact})

	if len(got) != 2 || got[0] != "a:impact" || got[1] != "b:impact" {
		t.Fatalf("dispatch = %v", got)
	}
	if r.HandlerCount(sim.EventImpact) != 2 || r.HandlerCount(sim.EventTelemetry) != 0 {
		t.Fatal("handler counts wrong")
	}
}
