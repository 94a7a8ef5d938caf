package idlesink

import (
	"context"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
)

type BatchConsumer struct {
	sink *Sink
}

func NewBatchConsumer(sink *Sink) *BatchConsumer {
	return &BatchConsumer{sink: sink}
}

// Consume rejects undecodable batches on their own, the rest are stored together
func (c *BatchConsumer) Consume(batch rmq.Deliveries) {
	var events []ctdf.IdleEvent
	var accepted rmq.Deliveries

	for _, delivery := range batch {
		decoded, err := DecodeBatch(delivery.Payload())
		if err != nil {
			log.Error().Err(err).Msg("Rejecting malformed idle event batch")

			if err := delivery.Reject(); err != nil {
				log.Error().Err(err).Msg("Failed to reject idle event batch")
			}
			continue
		}

		events = append(events, decoded...)
		accepted = append(accepted, delivery)
	}

	if err := c.sink.Store(context.Background(), events); err != nil {
		log.Error().Err(err).Int("events", len(events)).Msg("Failed to store idle events")

		if errors := accepted.Reject(); len(errors) > 0 {
			for _, err := range errors {
				log.Error().Err(err).Msg("Failed to reject idle event batch")
			}
		}
		return
	}

	if errors := accepted.Ack(); len(errors) > 0 {
		for _, err := range errors {
			log.Error().Err(err).Msg("Failed to ack idle event batch")
		}
	}
}
