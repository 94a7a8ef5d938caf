package ctdf

import "fmt"

// IdentityKey identifies a vehicle at a position. It is comparable and used as a map key,
// so coordinates are compared exactly and an absent identifier differs from an empty one.
type IdentityKey struct {
	VehicleID string

	TripID    string
	HasTripID bool

	RouteID    string
	HasRouteID bool

	Latitude  float64
	Longitude float64
}

func (k IdentityKey) String() string {
	tripID := "-"
	if k.HasTripID {
		tripID = k.TripID
	}
	routeID := "-"
	if k.HasRouteID {
		routeID = k.RouteID
	}

	return fmt.Sprintf("%s/%s/%s/%v/%v", k.VehicleID, tripID, routeID, k.Latitude, k.Longitude)
}
