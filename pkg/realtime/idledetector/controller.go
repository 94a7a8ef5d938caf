package idledetector

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyRunning = errors.New("idle detector already running")
	ErrNotRunning     = errors.New("idle detector not running")
)

// LoopFactory builds a fresh loop, every start begins with an empty buffer
type LoopFactory func() (*Loop, error)

// Controller starts and stops a poll loop on its own goroutine
type Controller struct {
	mu      sync.Mutex
	factory LoopFactory

	loop    *Loop
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

func NewController(factory LoopFactory) *Controller {
	return &Controller{factory: factory}
}

func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running() {
		return ErrAlreadyRunning
	}

	loop, err := c.factory()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.loop = loop
	c.cancel = cancel
	c.done = done
	c.lastErr = nil

	go func() {
		defer close(done)
		defer cancel()

		err := loop.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Idle detector exited")
		}

		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
	}()

	return nil
}

// Stop cancels the loop and waits for it to exit, or for ctx to expire
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running() {
		c.mu.Unlock()
		return ErrNotRunning
	}

	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the current loop exits. It is nil before the first Start.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.done
}

// Err returns the error the last loop exited with
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastErr
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	loop := c.loop
	lastErr := c.lastErr
	c.mu.Unlock()

	if loop == nil {
		return Status{State: StateStopped}
	}

	status := loop.Status()
	if lastErr != nil {
		status.LastError = lastErr.Error()
	}

	return status
}

// must hold mu
func (c *Controller) running() bool {
	if c.done == nil {
		return false
	}

	select {
	case <-c.done:
		return false
	default:
		return true
	}
}
