package idledetector

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/util"
	"golang.org/x/exp/slices"
)

// trackCandidates compares the A and B reference snapshots and records every
// vehicle that reported the same position in both as a candidate
func (e *Engine) trackCandidates(a ctdf.Snapshot, b ctdf.Snapshot) {
	// Vehicles that appeared or vanished between A and B cannot be judged
	churned := util.SymmetricDifference(a.VehicleIDs(), b.VehicleIDs())
	a = sortedByVehicle(excludeVehicles(a, churned))
	b = sortedByVehicle(excludeVehicles(b, churned))

	if len(churned) > 0 {
		log.Debug().Int("churned", len(churned)).Int("remaining", len(a)).Msg("Excluded churned vehicles from A and B")
	}

	horizonSeconds := e.config.HorizonSeconds()
	added := 0

	for i := 0; i < min(len(a), len(b)); i++ {
		before := &a[i]
		after := &b[i]

		if !before.SamePosition(after) || before.Timestamp >= after.Timestamp {
			continue
		}

		if existing := e.tracked.Match(after); existing != nil {
			// Either newer information is already tracked or this idle period
			// is already known, in both cases the origin must not move
			continue
		}

		candidate := &Candidate{
			Observation:     *after,
			OriginTimestamp: after.Timestamp,
		}

		if gap := after.Timestamp - before.Timestamp; gap > horizonSeconds {
			candidate.LagCorrection = gap - horizonSeconds

			log.Debug().
				Str("vehicle", after.VehicleID).
				Int64("gap", gap).
				Int64("correction", candidate.LagCorrection).
				Msg("Telemetry gap larger than horizon")
		}

		e.tracked.Put(candidate)
		added++
	}

	if added > 0 {
		log.Debug().Int("added", added).Int("tracked", e.tracked.Len()).Msg("New idle candidates")
	}
}

// excludeUntracked drops every vehicle of C that is not tracked. Tracked
// vehicles missing from C are left to the eviction counter.
func (e *Engine) excludeUntracked(c ctdf.Snapshot) ctdf.Snapshot {
	churned := util.SymmetricDifference(e.tracked.VehicleIDs(), c.VehicleIDs())

	return excludeVehicles(c, churned)
}

func sortedByVehicle(snapshot ctdf.Snapshot) ctdf.Snapshot {
	sorted := slices.Clone(snapshot)
	slices.SortStableFunc(sorted, func(x ctdf.VehicleObservation, y ctdf.VehicleObservation) int {
		return strings.Compare(x.VehicleID, y.VehicleID)
	})

	return sorted
}
