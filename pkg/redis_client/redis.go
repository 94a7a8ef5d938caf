package redis_client

import (
	"context"
	"errors"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueConnectionTag = "idletracker"

func Connect() error {
	return ConnectWithEnvironment(util.GetEnvironmentVariables())
}

func ConnectWithEnvironment(env map[string]string) error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword

	if env["TRAVIGO_REDIS_ADDRESS"] != "" {
		address = env["TRAVIGO_REDIS_ADDRESS"]
	}

	if env["TRAVIGO_REDIS_PASSWORD"] != "" {
		password = env["TRAVIGO_REDIS_PASSWORD"]
	}

	database, err := util.GetEnvironmentInt(env, "TRAVIGO_REDIS_DATABASE", defaultDatabase)
	if err != nil {
		return err
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := Client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	errChan := make(chan error, 10)
	go logQueueErrors(errChan)

	QueueConnection, err = rmq.OpenConnectionWithRedisClient(queueConnectionTag, Client, errChan)
	if err != nil {
		return err
	}

	return nil
}

func logQueueErrors(errChan <-chan error) {
	for err := range errChan {
		var heartbeatErr *rmq.HeartbeatError
		var consumeErr *rmq.ConsumeError

		switch {
		case errors.As(err, &heartbeatErr):
			if heartbeatErr.Count == rmq.HeartbeatErrorLimit {
				log.Error().Err(err).Msg("Queue heartbeat failed too often, consumers stopped")
			} else {
				log.Warn().Err(err).Msg("Queue heartbeat error")
			}
		case errors.As(err, &consumeErr):
			log.Warn().Err(err).Msg("Queue consume error")
		default:
			log.Error().Err(err).Msg("Queue error")
		}
	}
}
