package session

import (
	"context"
	"time"
)

// Observer is notified after every frame step.
type Observer interface {
	OnFrame(f Frame)
}

type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// Event is input queued for the session owner's loop.
type Event func(s *Session)

// Driver steps a session once per tick. Input arriving from other goroutines
// goes through Events and is applied between frames.
type Driver struct {
	s         *Session
	observers []Observer
	events    chan Event
}

func NewDriver(s *Session) *Driver {
	return &Driver{
		s:      s,
		events: make(chan Event, 64),
	}
}

func (d *Driver) Session() *Session { return d.s }

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// Send queues an event. It blocks when the queue is full and gives up when
// ctx is done.
func (d *Driver) Send(ctx context.Context, ev Event) error {
	select {
	case d.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick drains pending events, steps once and notifies observers.
func (d *Driver) Tick() Frame {
	d.drain()
	f := d.s.Step()
	for _, o := range d.observers {
		o.OnFrame(f)
	}
	return f
}

// Run steps the given number of frames as fast as possible. It stops at the
// first frame that fails Validate.
func (d *Driver) Run(ctx context.Context, frames int) error {
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := d.Tick().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RunLive ticks at fps until ctx is done. Events are applied as soon as they
// arrive, never in the middle of a step.
func (d *Driver) RunLive(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = d.s.FPS()
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			ev(d.s)
		case <-ticker.C:
			d.Tick()
		}
	}
}

func (d *Driver) drain() {
	for {
		select {
		case ev := <-d.events:
			ev(d.s)
		default:
			return
		}
	}
}
