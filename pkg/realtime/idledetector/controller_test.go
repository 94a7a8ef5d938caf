package idledetector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController(t *testing.T) {
	publisher := NewChannelPublisher(100)
	go func() {
		for range publisher.Events() {
		}
	}()

	controller := NewController(func() (*Loop, error) {
		return NewLoop(testConfig(1, 10, time.Millisecond), &scriptedSource{}, publisher), nil
	})

	assert.Equal(t, StateStopped, controller.Status().State)
	assert.ErrorIs(t, controller.Stop(context.Background()), ErrNotRunning)

	require.NoError(t, controller.Start())
	assert.ErrorIs(t, controller.Start(), ErrAlreadyRunning)

	assert.Eventually(t, func() bool {
		return controller.Status().State == StateRunning
	}, 5*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Stop(ctx))

	<-controller.Done()
	assert.NoError(t, controller.Err())
	assert.Equal(t, StateStopped, controller.Status().State)

	// A stopped detector can be started again with a fresh engine
	require.NoError(t, controller.Start())
	require.NoError(t, controller.Stop(ctx))
}

func TestControllerReportsLoopFailure(t *testing.T) {
	publisher := NewChannelPublisher(0)
	publisher.Close()

	controller := NewController(func() (*Loop, error) {
		return NewLoop(testConfig(1, 10, time.Millisecond), &scriptedSource{}, publisher), nil
	})

	require.NoError(t, controller.Start())
	<-controller.Done()

	assert.ErrorIs(t, controller.Err(), ErrPublisherClosed)
	assert.Contains(t, controller.Status().LastError, "closed")
}
