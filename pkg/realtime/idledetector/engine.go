package idledetector

import (
	"github.com/travigo/idletracker/pkg/ctdf"
)

// Engine owns the idle detection state. It is not safe for concurrent use,
// a single poll loop drives it one tick at a time.
type Engine struct {
	config  Config
	buffer  *Buffer
	tracked *TrackedSet
}

func NewEngine(config Config) *Engine {
	return &Engine{
		config:  config,
		buffer:  NewBuffer(config.Horizon),
		tracked: NewTrackedSet(),
	}
}

// Process pushes snapshot into the buffer and, once the buffer is full, returns the
// idle events confirmed by it. ready is false while the buffer is still filling.
func (e *Engine) Process(snapshot ctdf.Snapshot) (events []ctdf.IdleEvent, ready bool) {
	e.buffer.Push(snapshot)

	if !e.buffer.Ready() {
		return nil, false
	}

	a, b, c := e.buffer.Views()

	a = CleanSnapshot(a)
	b = CleanSnapshot(b)
	c = CleanSnapshot(c)

	e.trackCandidates(a, b)

	c = e.excludeUntracked(c)

	e.countMisses(c)

	return e.emitEvents(c), true
}

func (e *Engine) Ready() bool {
	return e.buffer.Ready()
}

// Tracked exposes the candidate set for inspection. Callers must not modify it.
func (e *Engine) Tracked() *TrackedSet {
	return e.tracked
}
