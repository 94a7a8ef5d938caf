package idledetector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/adjust/rmq/v5"
	"github.com/travigo/idletracker/pkg/ctdf"
)

// IdleEventsQueue carries one JSON array of idle events per tick
const IdleEventsQueue = "idle-events"

// ErrPublisherClosed is returned once the receiving side of a publisher has gone away
var ErrPublisherClosed = errors.New("idle event publisher closed")

// Publisher receives the batch of events produced by every tick, including empty ones.
// An error stops the poll loop.
type Publisher interface {
	Publish(ctx context.Context, events []ctdf.IdleEvent) error
}

// ChannelPublisher hands batches to an in-process consumer. A full channel blocks the loop.
type ChannelPublisher struct {
	events chan []ctdf.IdleEvent
	done   chan struct{}
	once   sync.Once
}

func NewChannelPublisher(buffer int) *ChannelPublisher {
	return &ChannelPublisher{
		events: make(chan []ctdf.IdleEvent, buffer),
		done:   make(chan struct{}),
	}
}

func (p *ChannelPublisher) Events() <-chan []ctdf.IdleEvent {
	return p.events
}

// Close is called by the consumer when it stops reading
func (p *ChannelPublisher) Close() {
	p.once.Do(func() { close(p.done) })
}

func (p *ChannelPublisher) Publish(ctx context.Context, events []ctdf.IdleEvent) error {
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}

	select {
	case p.events <- events:
		return nil
	case <-p.done:
		return ErrPublisherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueuePublisher pushes every batch onto an rmq queue for the idle sink
type QueuePublisher struct {
	queue rmq.Queue
}

func NewQueuePublisher(connection rmq.Connection, queueName string) (*QueuePublisher, error) {
	queue, err := connection.OpenQueue(queueName)
	if err != nil {
		return nil, fmt.Errorf("open queue %s: %w", queueName, err)
	}

	return &QueuePublisher{queue: queue}, nil
}

func (p *QueuePublisher) Publish(_ context.Context, events []ctdf.IdleEvent) error {
	if events == nil {
		events = []ctdf.IdleEvent{}
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}

	return p.queue.PublishBytes(payload)
}

// WriterPublisher writes every batch as indented JSON, used by the command line tools
type WriterPublisher struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewWriterPublisher(writer io.Writer) *WriterPublisher {
	return &WriterPublisher{writer: writer}
}

func (p *WriterPublisher) Publish(_ context.Context, events []ctdf.IdleEvent) error {
	if events == nil {
		events = []ctdf.IdleEvent{}
	}

	payload, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, err = fmt.Fprintln(p.writer, string(payload))
	return err
}

// MultiPublisher publishes every batch to all of its publishers
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, events []ctdf.IdleEvent) error {
	var errs []error
	for _, publisher := range m {
		if err := publisher.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
