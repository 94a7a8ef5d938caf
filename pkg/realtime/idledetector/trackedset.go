package idledetector

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
)

// Candidate is an observation believed to be the start of an idle period
type Candidate struct {
	Observation ctdf.VehicleObservation

	// Timestamp at which stillness was first detected
	OriginTimestamp int64
	// Consecutive ticks this identity and position was missing from the newest snapshot
	MissCount int
	// Seconds added to every duration computed for this candidate
	LagCorrection int64
}

func (c *Candidate) Key() ctdf.IdentityKey {
	return c.Observation.IdentityKey()
}

// TrackedSet holds candidates keyed by identity, iterated in insertion order
type TrackedSet struct {
	candidates map[ctdf.IdentityKey]*Candidate
	order      []ctdf.IdentityKey
}

func NewTrackedSet() *TrackedSet {
	return &TrackedSet{
		candidates: map[ctdf.IdentityKey]*Candidate{},
	}
}

func (t *TrackedSet) Len() int {
	return len(t.order)
}

func (t *TrackedSet) Get(key ctdf.IdentityKey) (*Candidate, bool) {
	candidate, ok := t.candidates[key]
	return candidate, ok
}

// Put adds candidate. An existing candidate with the same key is replaced and a
// warning logged. The engine looks candidates up with Match before calling Put,
// so a collision means two writers disagree about the same identity.
func (t *TrackedSet) Put(candidate *Candidate) {
	key := candidate.Key()

	if existing, ok := t.candidates[key]; ok {
		log.Warn().
			Str("key", key.String()).
			Int64("existingorigin", existing.OriginTimestamp).
			Int64("neworigin", candidate.OriginTimestamp).
			Msg("Idle candidate identity collision, keeping latest")

		t.candidates[key] = candidate
		return
	}

	t.candidates[key] = candidate
	t.order = append(t.order, key)
}

func (t *TrackedSet) Remove(key ctdf.IdentityKey) {
	if _, ok := t.candidates[key]; !ok {
		return
	}

	delete(t.candidates, key)

	for i, orderedKey := range t.order {
		if orderedKey == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Candidates returns the tracked candidates in insertion order
func (t *TrackedSet) Candidates() []*Candidate {
	candidates := make([]*Candidate, 0, len(t.order))
	for _, key := range t.order {
		candidates = append(candidates, t.candidates[key])
	}

	return candidates
}

// Match returns the first candidate at the same position as observation
func (t *TrackedSet) Match(observation *ctdf.VehicleObservation) *Candidate {
	if candidate, ok := t.candidates[observation.IdentityKey()]; ok {
		return candidate
	}

	for _, key := range t.order {
		candidate := t.candidates[key]
		if candidate.Observation.SamePosition(observation) {
			return candidate
		}
	}

	return nil
}

func (t *TrackedSet) VehicleIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(t.order))
	for _, key := range t.order {
		ids[key.VehicleID] = struct{}{}
	}

	return ids
}
