package consumer

import (
	"fmt"
	"net/http"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/redis_client"
)

type RedisConsumer struct {
	QueueName string

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	Consumer rmq.BatchConsumer

	// Defaults to redis_client.QueueConnection
	Connection rmq.Connection
	// Defaults to :3333
	StatsAddress string
}

// Setup starts the consumers then blocks serving the stats server
func (c *RedisConsumer) Setup() error {
	if _, err := c.StartConsumers(); err != nil {
		return err
	}

	return c.startStatsServer()
}

// StartConsumers opens the queue and attaches NumberConsumers batch consumers to it
func (c *RedisConsumer) StartConsumers() (rmq.Queue, error) {
	log.Info().Str("queue", c.QueueName).Msg("Starting consumers")

	queue, err := c.connection().OpenQueue(c.QueueName)
	if err != nil {
		return nil, err
	}
	if err := queue.StartConsuming(int64(c.NumberConsumers*c.BatchSize), 1*time.Second); err != nil {
		return nil, err
	}

	for i := 0; i < c.NumberConsumers; i++ {
		log.Info().Msgf("Starting %s consumer %d", c.QueueName, i)

		if _, err := queue.AddBatchConsumer(fmt.Sprintf("%s-%d", c.QueueName, i), int64(c.BatchSize), c.Timeout, c.Consumer); err != nil {
			return nil, err
		}
	}

	return queue, nil
}

func (c *RedisConsumer) connection() rmq.Connection {
	if c.Connection != nil {
		return c.Connection
	}

	return redis_client.QueueConnection
}

func (c *RedisConsumer) startStatsServer() error {
	address := c.StatsAddress
	if address == "" {
		address = ":3333"
	}

	mux := http.NewServeMux()

	endpoint := fmt.Sprintf("/%s/stats", c.QueueName)
	mux.Handle(endpoint, NewStatsHandler(c.connection()))
	mux.Handle("/health", NewHealthHandler())

	log.Info().Msgf("Stats server listening on http://localhost%s%s", address, endpoint)

	return http.ListenAndServe(address, mux)
}
