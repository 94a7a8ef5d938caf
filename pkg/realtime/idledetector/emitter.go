package idledetector

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
)

// emitEvents confirms every candidate that still reports the same position in c
// with a later timestamp. The same candidate is emitted again on every tick with
// its current duration.
func (e *Engine) emitEvents(c ctdf.Snapshot) []ctdf.IdleEvent {
	events := []ctdf.IdleEvent{}

	for _, candidate := range e.tracked.Candidates() {
		for i := range c {
			current := &c[i]

			if !candidate.Observation.SamePosition(current) || current.Timestamp <= candidate.OriginTimestamp {
				continue
			}

			duration := current.Timestamp - candidate.OriginTimestamp + candidate.LagCorrection

			// Clock skew between feeds can produce non-positive durations
			if duration <= 0 {
				log.Warn().
					Str("vehicle", current.VehicleID).
					Int64("duration", duration).
					Msg("Dropping idle event with non-positive duration")
				continue
			}

			events = append(events, ctdf.IdleEvent{
				IATAID:    current.Label,
				VehicleID: current.VehicleID,
				TripID:    current.TripID,
				RouteID:   current.RouteID,
				Latitude:  current.Latitude,
				Longitude: current.Longitude,
				Datetime:  current.Timestamp,
				Duration:  duration,
			})
		}
	}

	return events
}
