// Package csvsnapshot reads and writes recorded snapshots as CSV, one row per observation.
// An empty snapshot is stored as a single row holding only its tick.
package csvsnapshot

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/travigo/idletracker/pkg/ctdf"
	"golang.org/x/exp/slices"
)

type ObservationRecord struct {
	Tick      int     `csv:"tick"`
	Label     string  `csv:"label"`
	VehicleID string  `csv:"vehicle_id"`
	TripID    string  `csv:"trip_id"`
	RouteID   string  `csv:"route_id"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
	Timestamp int64   `csv:"timestamp"`
}

func (r *ObservationRecord) observation() ctdf.VehicleObservation {
	return ctdf.VehicleObservation{
		Label:     r.Label,
		VehicleID: r.VehicleID,
		TripID:    ctdf.OptionalString(r.TripID),
		RouteID:   ctdf.OptionalString(r.RouteID),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timestamp: r.Timestamp,
	}
}

// Read returns one snapshot per tick from the first to the last recorded tick.
// Ticks missing from the file come back as empty snapshots. Rows of the same tick
// keep their file order.
func Read(reader io.Reader) ([]ctdf.Snapshot, error) {
	var records []*ObservationRecord
	if err := gocsv.Unmarshal(reader, &records); err != nil {
		return nil, fmt.Errorf("parse snapshot csv: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	byTick := map[int]ctdf.Snapshot{}
	ticks := make([]int, 0, len(records))
	for _, record := range records {
		if _, seen := byTick[record.Tick]; !seen {
			byTick[record.Tick] = ctdf.Snapshot{}
			ticks = append(ticks, record.Tick)
		}

		if record.VehicleID == "" {
			continue
		}

		byTick[record.Tick] = append(byTick[record.Tick], record.observation())
	}

	first := slices.Min(ticks)
	last := slices.Max(ticks)

	snapshots := make([]ctdf.Snapshot, 0, last-first+1)
	for tick := first; tick <= last; tick++ {
		snapshot, ok := byTick[tick]
		if !ok {
			snapshot = ctdf.Snapshot{}
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// Write appends snapshot as the rows of tick, writing the header only when asked
func Write(writer io.Writer, tick int, snapshot ctdf.Snapshot, header bool) error {
	records := make([]*ObservationRecord, 0, len(snapshot))
	for _, observation := range snapshot {
		record := &ObservationRecord{
			Tick:      tick,
			Label:     observation.Label,
			VehicleID: observation.VehicleID,
			Latitude:  observation.Latitude,
			Longitude: observation.Longitude,
			Timestamp: observation.Timestamp,
		}
		if observation.TripID != nil {
			record.TripID = *observation.TripID
		}
		if observation.RouteID != nil {
			record.RouteID = *observation.RouteID
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		records = append(records, &ObservationRecord{Tick: tick})
	}

	if header {
		return gocsv.Marshal(records, writer)
	}

	return gocsv.MarshalWithoutHeaders(records, writer)
}

// Recorder numbers the snapshots it is given and writes the header with the first one
type Recorder struct {
	writer      io.Writer
	tick        int
	wroteHeader bool
}

func NewRecorder(writer io.Writer) *Recorder {
	return &Recorder{writer: writer}
}

// Record appends snapshot as the next tick
func (r *Recorder) Record(snapshot ctdf.Snapshot) error {
	if err := Write(r.writer, r.tick, snapshot, !r.wroteHeader); err != nil {
		return err
	}

	r.wroteHeader = true
	r.tick++

	return nil
}

// Ticks returns the number of snapshots recorded so far
func (r *Recorder) Ticks() int {
	return r.tick
}
