package formats

import (
	"github.com/travigo/idletracker/pkg/ctdf"
)

// SnapshotFormat turns one raw feed payload into the observations of a single poll tick
type SnapshotFormat interface {
	Decode([]byte) (ctdf.Snapshot, error)
}
