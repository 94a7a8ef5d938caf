package idledetector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/dataimporter/formats/csvsnapshot"
	"github.com/travigo/idletracker/pkg/dataimporter/manager"
	"github.com/travigo/idletracker/pkg/realtime/feedsource"
	"github.com/travigo/idletracker/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

var datasourceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "datasources",
		Value:   manager.DefaultDataSourcesDirectory,
		Usage:   "directory holding the datasource definitions",
		EnvVars: []string{"TRAVIGO_DATASOURCES_DIRECTORY"},
	},
	&cli.StringSliceFlag{
		Name:  "dataset",
		Usage: "dataset identifier to poll, can be repeated. Defaults to every registered dataset",
	},
}

// ConfigFlags override the environment configuration, shared with the web API
var ConfigFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "horizon",
		Usage: "ticks between the A and B reference snapshots",
	},
	&cli.IntFlag{
		Name:  "eviction-threshold",
		Usage: "consecutive misses before a candidate is dropped",
	},
	&cli.DurationFlag{
		Name:  "interval",
		Usage: "delay between two polls",
	},
	&cli.IntFlag{
		Name:  "max-ticks",
		Usage: "stop after this many ticks",
	},
}

// ConfigFromCLI reads the environment configuration and applies any flag set on the command line
func ConfigFromCLI(c *cli.Context) (Config, error) {
	config, err := GetConfig()
	if err != nil {
		return config, err
	}

	if c.IsSet("horizon") {
		config.Horizon = c.Int("horizon")
	}
	if c.IsSet("eviction-threshold") {
		config.EvictionThreshold = c.Int("eviction-threshold")
	}
	if c.IsSet("interval") {
		config.PollInterval = c.Duration("interval")
	}
	if c.IsSet("max-ticks") {
		config.MaxTicks = c.Int("max-ticks")
	}

	return config, config.Validate()
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "idle-detector",
		Usage: "Detects vehicles standing still in realtime vehicle position feeds",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "poll the datasets and publish idle events to the queue",
				Flags: append(append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "also print every batch of idle events",
					},
				}, datasourceFlags...), ConfigFlags...),
				Action: func(c *cli.Context) error {
					config, err := ConfigFromCLI(c)
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					var extra []Publisher
					if c.Bool("stdout") {
						extra = append(extra, NewWriterPublisher(os.Stdout))
					}

					controller, err := NewQueueController(config, c.String("datasources"), c.StringSlice("dataset"), extra...)
					if err != nil {
						return err
					}

					if err := controller.Start(); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					select {
					case <-signals:
						go func() {
							<-signals // hard exit on second signal (in case shutdown gets stuck)
							os.Exit(1)
						}()

						ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
						defer cancel()

						if err := controller.Stop(ctx); err != nil && !errors.Is(err, ErrNotRunning) {
							return err
						}
					case <-controller.Done():
					}

					return controller.Err()
				},
			},
			{
				Name:  "snapshot",
				Usage: "fetch the datasets and print or record the decoded observations",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "record",
						Usage: "append the snapshots to this CSV file instead of printing them",
					},
					&cli.IntFlag{
						Name:  "ticks",
						Value: 1,
						Usage: "number of snapshots to fetch",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Value: 30 * time.Second,
						Usage: "delay between two snapshots",
					},
				}, datasourceFlags...),
				Action: func(c *cli.Context) error {
					source, err := NewDataSetsSource(c.String("datasources"), c.StringSlice("dataset"))
					if err != nil {
						return err
					}

					var recorder *csvsnapshot.Recorder
					if c.String("record") != "" {
						record, err := os.Create(c.String("record"))
						if err != nil {
							return err
						}
						defer record.Close()

						recorder = csvsnapshot.NewRecorder(record)
					}

					for tick := 0; tick < c.Int("ticks"); tick++ {
						if tick > 0 {
							if err := sleepContext(c.Context, c.Duration("interval")); err != nil {
								return nil
							}
						}

						snapshot, err := source.Fetch(c.Context)
						if err != nil {
							log.Error().Err(err).Int("tick", tick).Msg("Failed to fetch snapshot")
							continue
						}

						if recorder == nil {
							pretty.Println(snapshot)
							continue
						}

						// Failed fetches are not recorded, a live run would not have pushed them either
						if err := recorder.Record(snapshot); err != nil {
							return err
						}

						log.Info().Int("tick", recorder.Ticks()-1).Int("observations", len(snapshot)).Msg("Recorded snapshot")
					}

					return nil
				},
			},
			{
				Name:      "replay",
				Usage:     "run the detector over a recorded CSV file and print the idle events",
				ArgsUsage: "<file>",
				Flags:     ConfigFlags,
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("expected one recorded snapshot file, got %d arguments", c.Args().Len())
					}

					source, err := feedsource.OpenReplaySource(c.Args().First())
					if err != nil {
						return err
					}

					config, err := ConfigFromCLI(c)
					if err != nil {
						return err
					}
					if source.Ticks() == 0 {
						return fmt.Errorf("%s holds no snapshots", c.Args().First())
					}
					config.MaxTicks = source.Ticks()

					loop := NewLoop(config, source, NewWriterPublisher(os.Stdout), WithSleeper(func(ctx context.Context, _ time.Duration) error {
						return ctx.Err()
					}))

					return loop.Run(c.Context)
				},
			},
		},
	}
}
