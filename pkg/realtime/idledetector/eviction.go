package idledetector

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
)

// countMisses resets the miss counter of every candidate present in c and
// increments it for the others. Candidates reaching the eviction threshold are dropped.
func (e *Engine) countMisses(c ctdf.Snapshot) {
	present := make(map[ctdf.IdentityKey]struct{}, len(c))
	for i := range c {
		present[c[i].IdentityKey()] = struct{}{}
	}

	evicted := 0

	for _, candidate := range e.tracked.Candidates() {
		key := candidate.Key()

		if _, ok := present[key]; ok {
			candidate.MissCount = 0
			continue
		}

		candidate.MissCount++

		if candidate.MissCount >= e.config.EvictionThreshold {
			e.tracked.Remove(key)
			evicted++

			log.Debug().
				Str("key", key.String()).
				Int("misses", candidate.MissCount).
				Msg("Evicted idle candidate")
		}
	}

	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Int("tracked", e.tracked.Len()).Msg("Idle candidates evicted")
	}
}
