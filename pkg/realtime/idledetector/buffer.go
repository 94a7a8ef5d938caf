package idledetector

import (
	"fmt"

	"github.com/travigo/idletracker/pkg/ctdf"
	"golang.org/x/exp/slices"
)

// Buffer is the sliding window of the last horizon+2 snapshots
type Buffer struct {
	horizon   int
	snapshots []ctdf.Snapshot
	filled    bool
}

func NewBuffer(horizon int) *Buffer {
	return &Buffer{
		horizon:   horizon,
		snapshots: make([]ctdf.Snapshot, 0, horizon+3),
	}
}

func (b *Buffer) Capacity() int {
	return b.horizon + 2
}

func (b *Buffer) Len() int {
	return len(b.snapshots)
}

// Push stores a private copy of snapshot, dropping the oldest once over capacity
func (b *Buffer) Push(snapshot ctdf.Snapshot) {
	b.snapshots = append(b.snapshots, slices.Clone(snapshot))

	if len(b.snapshots) > b.Capacity() {
		b.snapshots[0] = nil
		b.snapshots = b.snapshots[1:]
	}

	if len(b.snapshots) == b.Capacity() {
		b.filled = true
	}
}

// Ready is true once the buffer has reached capacity at least once
func (b *Buffer) Ready() bool {
	return b.filled
}

// Views returns the oldest snapshot, the one horizon ticks after it and the newest.
// Callers must check Ready first.
func (b *Buffer) Views() (a ctdf.Snapshot, bSnapshot ctdf.Snapshot, c ctdf.Snapshot) {
	if !b.Ready() {
		panic(fmt.Sprintf("idledetector: Views called on buffer holding %d of %d snapshots", len(b.snapshots), b.Capacity()))
	}

	return b.snapshots[0], b.snapshots[b.horizon], b.snapshots[b.horizon+1]
}
