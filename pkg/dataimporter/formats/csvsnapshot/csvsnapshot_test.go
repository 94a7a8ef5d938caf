package csvsnapshot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/idletracker/pkg/ctdf"
)

const fixture = `tick,label,vehicle_id,trip_id,route_id,latitude,longitude,timestamp
1,NYC,v1,t1,,40.5,-73.75,130
0,NYC,v1,t1,,40.5,-73.75,100
0,NYC,v2,,r2,40.25,-73.5,100
`

func TestRead(t *testing.T) {
	snapshots, err := Read(strings.NewReader(fixture))
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	require.Len(t, snapshots[0], 2)
	assert.Equal(t, int64(100), snapshots[0][0].Timestamp)
	assert.Equal(t, "t1", *snapshots[0][0].TripID)
	assert.Nil(t, snapshots[0][0].RouteID)
	assert.Equal(t, "v2", snapshots[0][1].VehicleID)
	assert.Nil(t, snapshots[0][1].TripID)

	require.Len(t, snapshots[1], 1)
	assert.Equal(t, int64(130), snapshots[1][0].Timestamp)
}

func TestWriteThenRead(t *testing.T) {
	tick0 := ctdf.Snapshot{
		{Label: "DUB", VehicleID: "v1", RouteID: ctdf.OptionalString("r1"), Latitude: 53.25, Longitude: -6.25, Timestamp: 10},
	}
	tick1 := ctdf.Snapshot{
		{Label: "DUB", VehicleID: "v1", RouteID: ctdf.OptionalString("r1"), Latitude: 53.25, Longitude: -6.25, Timestamp: 40},
	}

	var buffer bytes.Buffer
	require.NoError(t, Write(&buffer, 0, tick0, true))
	require.NoError(t, Write(&buffer, 1, tick1, false))

	snapshots, err := Read(&buffer)
	require.NoError(t, err)
	assert.Equal(t, []ctdf.Snapshot{tick0, tick1}, snapshots)
}

func TestRecorderKeepsEmptySnapshots(t *testing.T) {
	still := ctdf.Snapshot{
		{Label: "AKL", VehicleID: "v1", TripID: ctdf.OptionalString("t1"), Latitude: -36.75, Longitude: 174.75, Timestamp: 100},
	}

	var buffer bytes.Buffer
	recorder := NewRecorder(&buffer)
	require.NoError(t, recorder.Record(still))
	require.NoError(t, recorder.Record(ctdf.Snapshot{}))
	require.NoError(t, recorder.Record(still))
	require.NoError(t, recorder.Record(nil))
	assert.Equal(t, 4, recorder.Ticks())

	snapshots, err := Read(&buffer)
	require.NoError(t, err)
	require.Len(t, snapshots, 4)
	assert.Equal(t, still, snapshots[0])
	assert.Empty(t, snapshots[1])
	assert.Equal(t, still, snapshots[2])
	assert.Empty(t, snapshots[3])
}

func TestRecorderWritesHeaderOnce(t *testing.T) {
	var buffer bytes.Buffer
	recorder := NewRecorder(&buffer)

	for _, timestamp := range []int64{100, 130} {
		require.NoError(t, recorder.Record(ctdf.Snapshot{
			{Label: "SYD", VehicleID: "v1", RouteID: ctdf.OptionalString("r1"), Latitude: -33.75, Longitude: 151.25, Timestamp: timestamp},
		}))
	}

	assert.Equal(t, 1, strings.Count(buffer.String(), "vehicle_id"))
	assert.True(t, strings.HasPrefix(buffer.String(), "tick,"))

	snapshots, err := Read(&buffer)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, int64(130), snapshots[1][0].Timestamp)
}

func TestReadFillsMissingTicks(t *testing.T) {
	const gaps = `tick,label,vehicle_id,trip_id,route_id,latitude,longitude,timestamp
2,NYC,v1,t1,,40.5,-73.75,100
5,NYC,v1,t1,,40.5,-73.75,190
`

	snapshots, err := Read(strings.NewReader(gaps))
	require.NoError(t, err)
	require.Len(t, snapshots, 4)
	assert.Len(t, snapshots[0], 1)
	assert.Empty(t, snapshots[1])
	assert.Empty(t, snapshots[2])
	assert.Equal(t, int64(190), snapshots[3][0].Timestamp)
}
