package frame

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by a clock whose driver has gone away.
var ErrStopped = errors.New("frame: clock stopped")

// Clock is the single suspension point of the core. Wait publishes f, blocks
// until the next display refresh and returns the input sampled for it.
type Clock interface {
	Wait(ctx context.Context, f *Frame) (Input, error)
}

// Lockstep couples the core goroutine to a display driver. The core calls
// Wait; the driver calls Step once per refresh. Only one side runs game
// state at a time, so the world needs no locks.
type Lockstep struct {
	frames chan Frame
	vblank chan Input
	done   chan struct{}
	stop   sync.Once
}

func NewLockstep() *Lockstep {
	return &Lockstep{
		frames: make(chan Frame),
		vblank: make(chan Input),
		done:   make(chan struct{}),
	}
}

func (l *Lockstep) Wait(ctx context.Context, f *Frame) (Input, error) {
	select {
	case l.frames <- f.Clone():
	case <-ctx.Done():
		return NoInput, ctx.Err()
	case <-l.done:
		return NoInput, ErrStopped
	}
	select {
	case in := <-l.vblank:
		return in, nil
	case <-ctx.Done():
		return NoInput, ctx.Err()
	case <-l.done:
		return NoInput, ErrStopped
	}
}

// Step is called by the driver on a display refresh. It collects the frame
// the core finished and releases the core into the next one.
func (l *Lockstep) Step(ctx context.Context, in Input) (Frame, error) {
	var f Frame
	select {
	case f = <-l.frames:
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case <-l.done:
		return Frame{}, ErrStopped
	}
	select {
	case l.vblank <- in:
	case <-ctx.Done():
		return f, ctx.Err()
	case <-l.done:
		return f, ErrStopped
	}
	return f, nil
}

// Stop releases whichever side is blocked.
func (l *Lockstep) Stop() {
	l.stop.Do(func() { close(l.done) })
}

// Manual is a deterministic clock for tests and headless runs. Wait never
// blocks.
type Manual struct {
	Frames int
	Last   Frame
	// Script returns the input for frame n; nil means no input.
	Script func(n int) Input
	// Limit stops the clock after that many frames when non-zero.
	Limit int
}

func (m *Manual) Wait(ctx context.Context, f *Frame) (Input, error) {
	if err := ctx.Err(); err != nil {
		return NoInput, err
	}
	if m.Limit > 0 && m.Frames >= m.Limit {
		return NoInput, ErrStopped
	}
	m.Last = f.Clone()
	m.Frames++
	if m.Script == nil {
		return NoInput, nil
	}
	return m.Script(m.Frames), nil
}
