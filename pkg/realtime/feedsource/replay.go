package feedsource

import (
	"context"
	"io"
	"os"

	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/dataimporter/formats/csvsnapshot"
	"golang.org/x/exp/slices"
)

// ReplaySource serves recorded snapshots, one per Fetch
type ReplaySource struct {
	name      string
	snapshots []ctdf.Snapshot
	next      int
}

func NewReplaySource(name string, reader io.Reader) (*ReplaySource, error) {
	snapshots, err := csvsnapshot.Read(reader)
	if err != nil {
		return nil, err
	}

	return &ReplaySource{name: name, snapshots: snapshots}, nil
}

func OpenReplaySource(path string) (*ReplaySource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return NewReplaySource(path, file)
}

func (r *ReplaySource) Name() string {
	return r.name
}

// Ticks is the number of recorded snapshots
func (r *ReplaySource) Ticks() int {
	return len(r.snapshots)
}

func (r *ReplaySource) Fetch(ctx context.Context) (ctdf.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SourceUnavailableError{Source: r.name, Err: err}
	}

	if r.next >= len(r.snapshots) {
		return nil, &SourceUnavailableError{Source: r.name, Err: io.EOF}
	}

	snapshot := slices.Clone(r.snapshots[r.next])
	r.next++

	if snapshot == nil {
		snapshot = ctdf.Snapshot{}
	}

	return snapshot, nil
}
