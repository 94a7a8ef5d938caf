package idledetector

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/realtime/feedsource"
)

func TestReplayRecordedFeed(t *testing.T) {
	source, err := feedsource.OpenReplaySource("testdata/replay.csv")
	require.NoError(t, err)

	config := testConfig(1, 3, 30*time.Second)
	config.MaxTicks = source.Ticks()

	var output bytes.Buffer
	loop := NewLoop(config, source, NewWriterPublisher(&output), WithSleeper(func(ctx context.Context, _ time.Duration) error {
		return nil
	}))
	require.NoError(t, loop.Run(context.Background()))

	decoder := json.NewDecoder(&output)

	var batches [][]ctdf.IdleEvent
	for decoder.More() {
		var batch []ctdf.IdleEvent
		require.NoError(t, decoder.Decode(&batch))
		batches = append(batches, batch)
	}

	require.Len(t, batches, 2)
	for i, expected := range []int64{30, 60} {
		require.Len(t, batches[i], 1, "only the stationary vehicle is idle")
		assert.Equal(t, "MTA_1001", batches[i][0].VehicleID)
		assert.Equal(t, "NYC", batches[i][0].IATAID)
		assert.Equal(t, expected, batches[i][0].Duration)
	}
}
