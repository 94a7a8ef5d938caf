package ctdf

// VehicleObservation is one vehicle's reported state at one poll tick
type VehicleObservation struct {
	// Short source/station code attached upstream, carried through to IdleEvent.IATAID
	Label string

	VehicleID string
	TripID    *string
	RouteID   *string

	Latitude  float64
	Longitude float64

	// Unix seconds
	Timestamp int64
}

// Usable reports whether every field needed for idle detection is present
func (o *VehicleObservation) Usable() bool {
	return o.VehicleID != "" &&
		(o.TripID != nil || o.RouteID != nil) &&
		o.Latitude != 0 &&
		o.Longitude != 0 &&
		o.Timestamp != 0
}

func (o *VehicleObservation) IdentityKey() IdentityKey {
	key := IdentityKey{
		VehicleID: o.VehicleID,
		Latitude:  o.Latitude,
		Longitude: o.Longitude,
	}

	if o.TripID != nil {
		key.TripID = *o.TripID
		key.HasTripID = true
	}
	if o.RouteID != nil {
		key.RouteID = *o.RouteID
		key.HasRouteID = true
	}

	return key
}

// SamePosition compares two observations of possibly different ticks.
// Identifiers are only compared when both sides define them, and both the trip
// and the route check must hold. Coordinates must be bit-for-bit equal.
func (o *VehicleObservation) SamePosition(other *VehicleObservation) bool {
	return o.VehicleID == other.VehicleID &&
		optionalMatch(o.TripID, other.TripID) &&
		optionalMatch(o.RouteID, other.RouteID) &&
		o.Latitude == other.Latitude &&
		o.Longitude == other.Longitude
}

func optionalMatch(a *string, b *string) bool {
	if a == nil || b == nil {
		return true
	}

	return *a == *b
}

// Snapshot is every observation captured during one poll tick
type Snapshot []VehicleObservation

// VehicleIDs returns the set of vehicle ids present in the snapshot
func (s Snapshot) VehicleIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s))
	for _, observation := range s {
		ids[observation.VehicleID] = struct{}{}
	}

	return ids
}

// OptionalString returns nil for the empty string
func OptionalString(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}
