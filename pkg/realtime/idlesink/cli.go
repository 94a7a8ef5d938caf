package idlesink

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travigo/idletracker/pkg/consumer"
	"github.com/travigo/idletracker/pkg/database"
	"github.com/travigo/idletracker/pkg/elastic_client"
	"github.com/travigo/idletracker/pkg/realtime/idledetector"
	"github.com/travigo/idletracker/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "idle-sink",
		Usage: "Stores the idle events published by the idle detector",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the idle event queue consumers",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "consumers",
						Value: 2,
						Usage: "number of queue consumers",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Value: 50,
						Usage: "number of published batches handled together",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}
					defer elastic_client.WaitUntilQueueEmpty()

					redisConsumer := consumer.RedisConsumer{
						QueueName:       idledetector.IdleEventsQueue,
						NumberConsumers: c.Int("consumers"),
						BatchSize:       c.Int("batch-size"),
						Timeout:         2 * time.Second,
						Consumer:        NewBatchConsumer(NewDefaultSink()),
					}

					errs := make(chan error, 1)
					go func() {
						errs <- redisConsumer.Setup()
					}()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					select {
					case err := <-errs:
						return err
					case <-signals:
					}

					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "cleaner",
				Usage: "run the queue cleaner for the idle events queue",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					return StartCleaner(ctx, redis_client.QueueConnection)
				},
			},
		},
	}
}
