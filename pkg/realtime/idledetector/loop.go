package idledetector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/realtime/feedsource"
)

type State string

const (
	StateWaitingForBuffer State = "WAITING_FOR_BUFFER"
	StateRunning          State = "RUNNING"
	StateErrorBackoff     State = "ERROR_BACKOFF"
	StateStopped          State = "STOPPED"
)

// Status is a point in time view of a poll loop, safe to read from any goroutine
type Status struct {
	State               State     `json:"state"`
	Ticks               int       `json:"ticks"`
	Tracked             int       `json:"tracked"`
	EventsPublished     int       `json:"events_published"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastTick            time.Time `json:"last_tick,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type LoopOption func(*Loop)

// WithSleeper replaces the wall clock wait between ticks
func WithSleeper(sleeper Sleeper) LoopOption {
	return func(l *Loop) {
		l.sleep = sleeper
	}
}

// Loop polls a source, feeds the engine and publishes one batch per tick
type Loop struct {
	config    Config
	engine    *Engine
	source    feedsource.Source
	publisher Publisher
	sleep     Sleeper
	backoff   *backoff.ExponentialBackOff

	statusMutex sync.RWMutex
	status      Status
}

func NewLoop(config Config, source feedsource.Source, publisher Publisher, options ...LoopOption) *Loop {
	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = config.PollInterval
	retryBackoff.MaxInterval = 10 * config.PollInterval
	retryBackoff.MaxElapsedTime = 0
	retryBackoff.Reset()

	loop := &Loop{
		config:    config,
		engine:    NewEngine(config),
		source:    source,
		publisher: publisher,
		sleep:     sleepContext,
		backoff:   retryBackoff,
		status:    Status{State: StateWaitingForBuffer},
	}

	for _, option := range options {
		option(loop)
	}

	return loop
}

func (l *Loop) Status() Status {
	l.statusMutex.RLock()
	defer l.statusMutex.RUnlock()

	return l.status
}

func (l *Loop) updateStatus(update func(status *Status)) {
	l.statusMutex.Lock()
	defer l.statusMutex.Unlock()

	update(&l.status)
}

// Run blocks until ctx is cancelled, MaxTicks is reached or publishing fails.
// Only a publishing failure is returned as an error.
func (l *Loop) Run(ctx context.Context) error {
	defer l.updateStatus(func(status *Status) { status.State = StateStopped })

	log.Info().
		Int("horizon", l.config.Horizon).
		Int("eviction", l.config.EvictionThreshold).
		Str("interval", l.config.PollInterval.String()).
		Int("maxticks", l.config.MaxTicks).
		Msg("Starting idle detector")

	for tick := 1; ; tick++ {
		if ctx.Err() != nil {
			log.Info().Msg("Idle detector stopped")
			return nil
		}

		delay, err := l.tick(ctx)
		if err != nil {
			return err
		}

		if l.config.MaxTicks > 0 && tick >= l.config.MaxTicks {
			log.Info().
				Int("ticks", tick).
				Int("discarded", l.engine.Tracked().Len()).
				Msg("Idle detector reached tick limit")
			return nil
		}

		if err := l.sleep(ctx, delay); err != nil {
			log.Info().Msg("Idle detector stopped")
			return nil
		}
	}
}

// tick runs one iteration and returns how long to wait before the next one
func (l *Loop) tick(ctx context.Context) (time.Duration, error) {
	snapshot, err := l.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil
		}

		delay := max(l.config.PollInterval, l.backoff.NextBackOff(), feedsource.RetryAfter(err))

		l.updateStatus(func(status *Status) {
			status.State = StateErrorBackoff
			status.Ticks++
			status.ConsecutiveFailures++
			status.LastError = err.Error()
		})

		log.Error().Err(err).Str("delay", delay.String()).Msg("Failed to fetch snapshot")

		return delay, nil
	}

	l.backoff.Reset()

	events, ready := l.engine.Process(snapshot)

	if ready {
		if err := l.publisher.Publish(ctx, events); err != nil {
			if ctx.Err() != nil {
				return 0, nil
			}

			l.updateStatus(func(status *Status) { status.LastError = err.Error() })

			return 0, fmt.Errorf("publish idle events: %w", err)
		}
	}

	state := StateWaitingForBuffer
	if ready {
		state = StateRunning
	}

	tracked := l.engine.Tracked().Len()

	l.updateStatus(func(status *Status) {
		status.State = state
		status.Ticks++
		status.Tracked = tracked
		status.EventsPublished += len(events)
		status.ConsecutiveFailures = 0
		status.LastTick = time.Now()
	})

	log.Debug().
		Int("observations", len(snapshot)).
		Int("events", len(events)).
		Int("tracked", tracked).
		Bool("ready", ready).
		Msg("Idle detector tick")

	return l.config.PollInterval, nil
}

func (l *Loop) fetch(ctx context.Context) (ctdf.Snapshot, error) {
	if l.config.FetchTimeout <= 0 {
		return l.source.Fetch(ctx)
	}

	fetchContext, cancel := context.WithTimeout(ctx, l.config.FetchTimeout)
	defer cancel()

	return l.source.Fetch(fetchContext)
}
