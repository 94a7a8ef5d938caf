package idlesink

import (
	"context"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/realtime/idledetector"
)

const cleanInterval = 5 * time.Minute

// StartCleaner returns the deliveries of dead consumers to their queue and
// retries rejected batches, until ctx is done
func StartCleaner(ctx context.Context, connection rmq.Connection) error {
	cleaner := rmq.NewCleaner(connection)

	queue, err := connection.OpenQueue(idledetector.IdleEventsQueue)
	if err != nil {
		return err
	}

	log.Info().Msg("Starting idle-events queue cleaner process")

	ticker := time.NewTicker(cleanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		returned, err := cleaner.Clean()
		if err != nil {
			log.Error().Err(err).Msg("Failed to clean")
			continue
		}

		if returned != 0 {
			log.Info().Msgf("Cleaned %d records", returned)
		}

		retried, err := queue.ReturnRejected(100)
		if err != nil {
			log.Error().Err(err).Msg("Failed to return rejected deliveries")
			continue
		}

		if retried != 0 {
			log.Info().Msgf("Retrying %d rejected batches", retried)
		}
	}
}
