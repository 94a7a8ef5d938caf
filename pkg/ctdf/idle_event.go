package ctdf

// IdleEvent is a confirmed idle interval. Events for the same key are re-emitted
// every tick with the current known duration, consumers keep the maximum.
type IdleEvent struct {
	IATAID    string  `json:"iata_id" bson:"iataid" groups:"basic"`
	VehicleID string  `json:"vehicle_id" bson:"vehicleid" groups:"basic"`
	TripID    *string `json:"trip_id" bson:"tripid" groups:"basic"`
	RouteID   *string `json:"route_id" bson:"routeid" groups:"basic"`
	Latitude  float64 `json:"latitude" bson:"latitude" groups:"basic"`
	Longitude float64 `json:"longitude" bson:"longitude" groups:"basic"`

	// Unix seconds of the observation confirming the event
	Datetime int64 `json:"datetime" bson:"datetime" groups:"basic"`
	// Seconds, always > 0
	Duration int64 `json:"duration" bson:"duration" groups:"basic"`
}

func (e *IdleEvent) Key() IdentityKey {
	observation := VehicleObservation{
		VehicleID: e.VehicleID,
		TripID:    e.TripID,
		RouteID:   e.RouteID,
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
	}

	return observation.IdentityKey()
}
