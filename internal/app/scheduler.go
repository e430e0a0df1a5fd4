package app

import (
	"sort"
	"time"
)

// Deferred is a one-shot task that fires once the scheduler clock reaches FireAt.
type Deferred struct {
	fireAt    time.Duration
	fn        func()
	fired     bool
	cancelled bool
}

// FireAt is the scheduler time the task is due.
func (d *Deferred) FireAt() time.Duration { return d.fireAt }
func (d *Deferred) Fired() bool           { return d.fired }
func (d *Deferred) Cancelled() bool       { return d.cancelled }

// Cancel prevents a pending task from firing. It reports whether the task was
// still pending.
func (d *Deferred) Cancel() bool {
	if d.fired || d.cancelled {
		return false
	}
	d.cancelled = true
	return true
}

// Scheduler is the frame clock. Hosts call Tick once per rendered frame; due
// deferred tasks run first, in fire-time order, then the tick callbacks.
type Scheduler struct {
	now     time.Duration
	frame   uint64
	pending []*Deferred
	tickers []func(frame uint64)
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Now() time.Duration { return s.now }
func (s *Scheduler) Frame() uint64      { return s.frame }

// OnTick registers fn to run on every tick.
func (s *Scheduler) OnTick(fn func(frame uint64)) {
	s.tickers = append(s.tickers, fn)
}

// After schedules fn to run on the first tick at or past now+d.
func (s *Scheduler) After(d time.Duration, fn func()) *Deferred {
	task := &Deferred{fireAt: s.now + d, fn: fn}
	s.pending = append(s.pending, task)
	return task
}

// Pending returns the number of tasks that have neither fired nor been cancelled.
func (s *Scheduler) Pending() int {
	n := 0
	for _, d := range s.pending {
		if !d.fired && !d.cancelled {
			n++
		}
	}
	return n
}

// Tick advances the clock by dt and runs one frame.
func (s *Scheduler) Tick(dt time.Duration) uint64 {
	if dt < 0 {
		dt = 0
	}
	s.now += dt
	s.frame++
	s.runDue()
	for _, fn := range s.tickers {
		fn(s.frame)
	}
	return s.frame
}

func (s *Scheduler) runDue() {
	var due, keep []*Deferred
	for _, d := range s.pending {
		switch {
		case d.cancelled:
		case d.fireAt <= s.now:
			due = append(due, d)
		default:
			keep = append(keep, d)
		}
	}
	s.pending = keep
	sort.SliceStable(due, func(i, j int) bool { return due[i].fireAt < due[j].fireAt })
	for _, d := range due {
		if d.cancelled {
			continue
		}
		d.fired = true
		d.fn()
	}
}
