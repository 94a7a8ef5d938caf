package idledetector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/realtime/feedsource"
)

type fetchStep struct {
	snapshot ctdf.Snapshot
	err      error
}

// scriptedSource plays back steps, then keeps reporting a stationary vehicle
type scriptedSource struct {
	mu    sync.Mutex
	steps []fetchStep
	calls int
}

func (s *scriptedSource) Fetch(ctx context.Context) (ctdf.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.steps) > 0 {
		step := s.steps[0]
		s.steps = s.steps[1:]
		return step.snapshot, step.err
	}

	return ctdf.Snapshot{observation("v1", "t1", 1, 1, int64(1000+s.calls))}, nil
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func stationary(timestamp int64) fetchStep {
	return fetchStep{snapshot: ctdf.Snapshot{observation("v1", "t1", 40.5, -73.75, timestamp)}}
}

func TestLoopPublishesOncePerReadyTick(t *testing.T) {
	config := testConfig(1, 10, 30*time.Second)
	config.MaxTicks = 4

	source := &scriptedSource{steps: []fetchStep{stationary(100), stationary(130), stationary(160), stationary(190)}}
	publisher := NewChannelPublisher(10)
	sleeper := &recordingSleeper{}

	loop := NewLoop(config, source, publisher, WithSleeper(sleeper.sleep))
	require.NoError(t, loop.Run(context.Background()))

	require.Len(t, publisher.Events(), 2)
	assert.Equal(t, int64(30), (<-publisher.Events())[0].Duration)
	assert.Equal(t, int64(60), (<-publisher.Events())[0].Duration)

	assert.Equal(t, []time.Duration{30 * time.Second, 30 * time.Second, 30 * time.Second}, sleeper.delays)

	status := loop.Status()
	assert.Equal(t, StateStopped, status.State)
	assert.Equal(t, 4, status.Ticks)
	assert.Equal(t, 2, status.EventsPublished)
	assert.Equal(t, 1, status.Tracked)
}

func TestLoopPublishesEmptyBatches(t *testing.T) {
	config := testConfig(1, 10, time.Second)
	config.MaxTicks = 3

	source := &scriptedSource{steps: []fetchStep{{snapshot: ctdf.Snapshot{}}, {snapshot: ctdf.Snapshot{}}, {snapshot: ctdf.Snapshot{}}}}
	publisher := NewChannelPublisher(10)

	loop := NewLoop(config, source, publisher, WithSleeper((&recordingSleeper{}).sleep))
	require.NoError(t, loop.Run(context.Background()))

	require.Len(t, publisher.Events(), 1)
	batch := <-publisher.Events()
	assert.NotNil(t, batch)
	assert.Empty(t, batch)
}

func TestLoopBacksOffOnFetchErrors(t *testing.T) {
	config := testConfig(1, 10, time.Second)
	config.MaxTicks = 4

	source := &scriptedSource{steps: []fetchStep{
		stationary(100),
		{err: &feedsource.RateLimitedError{Source: "test", RetryAfter: time.Hour}},
		{err: &feedsource.SourceUnavailableError{Source: "test", Err: errors.New("connection refused")}},
		stationary(130),
	}}
	publisher := NewChannelPublisher(10)
	sleeper := &recordingSleeper{}

	loop := NewLoop(config, source, publisher, WithSleeper(sleeper.sleep))
	require.NoError(t, loop.Run(context.Background()))

	require.Len(t, sleeper.delays, 3)
	assert.Equal(t, time.Second, sleeper.delays[0])
	assert.Equal(t, time.Hour, sleeper.delays[1], "the source retry delay is honoured")
	assert.GreaterOrEqual(t, sleeper.delays[2], time.Second)

	status := loop.Status()
	assert.Equal(t, 4, status.Ticks)
	assert.Equal(t, 0, status.ConsecutiveFailures)
	assert.Contains(t, status.LastError, "connection refused")

	// Failed ticks push nothing, so the buffer only holds two snapshots
	assert.Empty(t, publisher.Events())
}

func TestLoopStopsWhenPublishingFails(t *testing.T) {
	config := testConfig(1, 10, time.Second)

	publisher := NewChannelPublisher(10)
	publisher.Close()

	source := &scriptedSource{}
	loop := NewLoop(config, source, publisher, WithSleeper((&recordingSleeper{}).sleep))

	err := loop.Run(context.Background())
	assert.ErrorIs(t, err, ErrPublisherClosed)
	assert.Equal(t, 3, source.calls)
	assert.Equal(t, StateStopped, loop.Status().State)
}

func TestLoopStopsOnCancel(t *testing.T) {
	config := testConfig(1, 10, time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	ticks := 0
	sleeper := func(ctx context.Context, d time.Duration) error {
		ticks++
		if ticks == 5 {
			cancel()
		}
		return ctx.Err()
	}

	source := &scriptedSource{}
	loop := NewLoop(config, source, NewChannelPublisher(10), WithSleeper(sleeper))

	assert.NoError(t, loop.Run(ctx))
	assert.Equal(t, 5, source.calls)
}

func TestLoopBlocksOnFullChannel(t *testing.T) {
	config := testConfig(1, 10, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := NewChannelPublisher(0)
	loop := NewLoop(config, &scriptedSource{}, publisher, WithSleeper((&recordingSleeper{}).sleep))

	done := make(chan error)
	go func() { done <- loop.Run(ctx) }()

	<-publisher.Events()
	<-publisher.Events()

	cancel()
	assert.NoError(t, <-done)
}

func TestSleepContextStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := time.Now()
	err := sleepContext(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(started), time.Second)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
