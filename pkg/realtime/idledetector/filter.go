package idledetector

import (
	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/util"
	"golang.org/x/exp/slices"
)

// CleanSnapshot drops unusable observations and collapses duplicate vehicle ids.
// The last duplicate wins but keeps the position of the first, so the output order
// only depends on the input order.
func CleanSnapshot(snapshot ctdf.Snapshot) ctdf.Snapshot {
	cleaned := make(ctdf.Snapshot, 0, len(snapshot))
	positions := make(map[string]int, len(snapshot))

	for _, observation := range snapshot {
		if !observation.Usable() {
			continue
		}

		if position, exists := positions[observation.VehicleID]; exists {
			cleaned[position] = observation
			continue
		}

		positions[observation.VehicleID] = len(cleaned)
		cleaned = append(cleaned, observation)
	}

	return cleaned
}

// excludeVehicles returns snapshot without the observations of the given vehicle ids
func excludeVehicles(snapshot ctdf.Snapshot, vehicleIDs map[string]struct{}) ctdf.Snapshot {
	if len(vehicleIDs) == 0 {
		return snapshot
	}

	kept := slices.Clone(snapshot)
	util.InPlaceFilter((*[]ctdf.VehicleObservation)(&kept), func(observation ctdf.VehicleObservation) bool {
		_, excluded := vehicleIDs[observation.VehicleID]
		return !excluded
	})

	return kept
}
