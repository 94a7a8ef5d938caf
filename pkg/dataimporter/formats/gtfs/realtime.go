package gtfs

import (
	"fmt"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/dataimporter/datasets"
	"golang.org/x/exp/slices"
	"google.golang.org/protobuf/proto"
)

var supportedVersions = []string{"0.1", "1.0", "2.0"}

// Realtime decodes GTFS-RT vehicle position feeds for one dataset
type Realtime struct {
	dataset string
	label   string
	filter  *vm.Program
}

func NewRealtime(dataset datasets.DataSet) (*Realtime, error) {
	realtime := &Realtime{
		dataset: dataset.Identifier,
		label:   dataset.Label,
	}

	if dataset.Filter != "" {
		program, err := expr.Compile(dataset.Filter, expr.Env(ctdf.VehicleObservation{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile filter for dataset %s: %w", dataset.Identifier, err)
		}

		realtime.filter = program
	}

	return realtime, nil
}

// Decode returns an error only when the payload itself cannot be used.
// Entities missing a required field are dropped and the rest of the feed is kept.
func (r *Realtime) Decode(body []byte) (ctdf.Snapshot, error) {
	feed := gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse GTFS-RT protobuf: %w", err)
	}

	header := feed.GetHeader()
	if !slices.Contains(supportedVersions, header.GetGtfsRealtimeVersion()) {
		return nil, fmt.Errorf("unsupported GTFS-RT version %q", header.GetGtfsRealtimeVersion())
	}
	if header.GetIncrementality() != gtfs.FeedHeader_FULL_DATASET {
		return nil, fmt.Errorf("unsupported GTFS-RT incrementality %s", header.GetIncrementality())
	}

	snapshot := make(ctdf.Snapshot, 0, len(feed.GetEntity()))
	dropped := 0
	filtered := 0

	for _, entity := range feed.GetEntity() {
		observation, ok := r.observation(entity)
		if !ok {
			dropped++
			continue
		}

		if !r.keep(observation) {
			filtered++
			continue
		}

		snapshot = append(snapshot, observation)
	}

	log.Debug().
		Str("dataset", r.dataset).
		Int("entities", len(feed.GetEntity())).
		Int("observations", len(snapshot)).
		Int("dropped", dropped).
		Int("filtered", filtered).
		Msg("Decoded GTFS-RT feed")

	return snapshot, nil
}

func (r *Realtime) observation(entity *gtfs.FeedEntity) (ctdf.VehicleObservation, bool) {
	vehiclePosition := entity.GetVehicle()
	if vehiclePosition == nil {
		return ctdf.VehicleObservation{}, false
	}

	vehicleID := vehiclePosition.GetVehicle().GetId()
	vehicleLabel := vehiclePosition.GetVehicle().GetLabel()

	// Some feeds only label their vehicles, the entity id then identifies it
	if vehicleID == "" {
		if vehicleLabel == "" || entity.GetId() == "" {
			return ctdf.VehicleObservation{}, false
		}
		vehicleID = entity.GetId()
	}

	position := vehiclePosition.GetPosition()
	trip := vehiclePosition.GetTrip()

	observation := ctdf.VehicleObservation{
		Label:     r.label,
		VehicleID: vehicleID,
		TripID:    ctdf.OptionalString(trip.GetTripId()),
		RouteID:   ctdf.OptionalString(trip.GetRouteId()),
		Latitude:  float64(position.GetLatitude()),
		Longitude: float64(position.GetLongitude()),
		Timestamp: int64(vehiclePosition.GetTimestamp()),
	}

	return observation, observation.Usable()
}

func (r *Realtime) keep(observation ctdf.VehicleObservation) bool {
	if r.filter == nil {
		return true
	}

	result, err := expr.Run(r.filter, observation)
	if err != nil {
		log.Warn().Err(err).Str("dataset", r.dataset).Str("vehicle", observation.VehicleID).Msg("Failed to evaluate dataset filter")
		return false
	}

	keep, _ := result.(bool)

	return keep
}
