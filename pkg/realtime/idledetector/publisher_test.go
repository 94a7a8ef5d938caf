package idledetector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/adjust/rmq/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/idletracker/pkg/ctdf"
)

var testEvent = ctdf.IdleEvent{
	IATAID:    "NYC",
	VehicleID: "v1",
	TripID:    ctdf.OptionalString("t1"),
	Latitude:  40.5,
	Longitude: -73.75,
	Datetime:  160,
	Duration:  30,
}

func TestQueuePublisher(t *testing.T) {
	connection := rmq.NewTestConnection()

	publisher, err := NewQueuePublisher(connection, IdleEventsQueue)
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(context.Background(), []ctdf.IdleEvent{testEvent}))
	require.NoError(t, publisher.Publish(context.Background(), nil))

	deliveries := connection.GetDeliveries(IdleEventsQueue)
	require.Len(t, deliveries, 2)
	assert.JSONEq(t, `[{"iata_id":"NYC","vehicle_id":"v1","trip_id":"t1","route_id":null,"latitude":40.5,"longitude":-73.75,"datetime":160,"duration":30}]`, deliveries[0])
	assert.Equal(t, "[]", deliveries[1])
}

func TestWriterPublisher(t *testing.T) {
	var buffer bytes.Buffer
	publisher := NewWriterPublisher(&buffer)

	require.NoError(t, publisher.Publish(context.Background(), []ctdf.IdleEvent{testEvent}))

	var decoded []ctdf.IdleEvent
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &decoded))
	assert.Equal(t, []ctdf.IdleEvent{testEvent}, decoded)
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, []ctdf.IdleEvent) error { return f.err }

func TestMultiPublisher(t *testing.T) {
	channel := NewChannelPublisher(1)
	broken := errors.New("broken")

	err := MultiPublisher{failingPublisher{err: broken}, channel}.Publish(context.Background(), []ctdf.IdleEvent{testEvent})
	assert.ErrorIs(t, err, broken)
	assert.Len(t, channel.Events(), 1, "the remaining publishers still receive the batch")
}

func TestChannelPublisherCancelled(t *testing.T) {
	publisher := NewChannelPublisher(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, publisher.Publish(ctx, nil), context.Canceled)

	publisher.Close()
	publisher.Close()
	assert.ErrorIs(t, publisher.Publish(context.Background(), nil), ErrPublisherClosed)
}
