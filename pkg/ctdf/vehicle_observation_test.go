package ctdf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleObservationUsable(t *testing.T) {
	valid := VehicleObservation{VehicleID: "v1", RouteID: OptionalString("R1"), Latitude: 1, Longitude: 1, Timestamp: 100}
	assert.True(t, valid.Usable())

	tests := map[string]func(o *VehicleObservation){
		"no vehicle id":     func(o *VehicleObservation) { o.VehicleID = "" },
		"no trip or route":  func(o *VehicleObservation) { o.RouteID = nil },
		"zero latitude":     func(o *VehicleObservation) { o.Latitude = 0 },
		"zero longitude":    func(o *VehicleObservation) { o.Longitude = 0 },
		"missing timestamp": func(o *VehicleObservation) { o.Timestamp = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			observation := valid
			mutate(&observation)
			assert.False(t, observation.Usable())
		})
	}
}

func TestSamePositionOptionalIdentifiers(t *testing.T) {
	base := VehicleObservation{VehicleID: "v1", TripID: OptionalString("T1"), RouteID: OptionalString("R1"), Latitude: 51.5, Longitude: -0.1}

	routeOnly := base
	routeOnly.TripID = nil
	assert.True(t, base.SamePosition(&routeOnly), "absent trip id is not a constraint")

	otherTrip := base
	otherTrip.TripID = OptionalString("T2")
	assert.False(t, base.SamePosition(&otherTrip), "trip and route must both agree")

	otherRoute := base
	otherRoute.RouteID = OptionalString("R2")
	assert.False(t, base.SamePosition(&otherRoute))

	moved := base
	moved.Latitude = 51.50001
	assert.False(t, base.SamePosition(&moved))

	otherVehicle := base
	otherVehicle.VehicleID = "v2"
	assert.False(t, base.SamePosition(&otherVehicle))
}

func TestIdentityKeyDistinguishesAbsentFromEmpty(t *testing.T) {
	empty := ""
	absent := VehicleObservation{VehicleID: "v1", RouteID: OptionalString("R1"), Latitude: 1, Longitude: 2}
	emptyTrip := absent
	emptyTrip.TripID = &empty

	assert.NotEqual(t, absent.IdentityKey(), emptyTrip.IdentityKey())
	assert.Equal(t, "v1/-/R1/1/2", absent.IdentityKey().String())
}

func TestIdleEventJSON(t *testing.T) {
	event := IdleEvent{
		IATAID:    "NYC",
		VehicleID: "v1",
		RouteID:   OptionalString("R1"),
		Latitude:  40.7,
		Longitude: -73.9,
		Datetime:  160,
		Duration:  30,
	}

	encoded, err := json.Marshal(event)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"iata_id": "NYC",
		"vehicle_id": "v1",
		"trip_id": null,
		"route_id": "R1",
		"latitude": 40.7,
		"longitude": -73.9,
		"datetime": 160,
		"duration": 30
	}`, string(encoded))

	assert.Equal(t, IdentityKey{VehicleID: "v1", RouteID: "R1", HasRouteID: true, Latitude: 40.7, Longitude: -73.9}, event.Key())
}

func TestSnapshotVehicleIDs(t *testing.T) {
	snapshot := Snapshot{{VehicleID: "a"}, {VehicleID: "b"}, {VehicleID: "a"}}

	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, snapshot.VehicleIDs())
}
