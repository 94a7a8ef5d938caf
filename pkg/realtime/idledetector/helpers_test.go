package idledetector

import (
	"time"

	"github.com/travigo/idletracker/pkg/ctdf"
)

func observation(vehicleID string, tripID string, latitude float64, longitude float64, timestamp int64) ctdf.VehicleObservation {
	return ctdf.VehicleObservation{
		Label:     "NYC",
		VehicleID: vehicleID,
		TripID:    ctdf.OptionalString(tripID),
		Latitude:  latitude,
		Longitude: longitude,
		Timestamp: timestamp,
	}
}

func testConfig(horizon int, evictionThreshold int, pollInterval time.Duration) Config {
	return Config{
		Horizon:           horizon,
		EvictionThreshold: evictionThreshold,
		PollInterval:      pollInterval,
		FetchTimeout:      time.Second,
	}
}
