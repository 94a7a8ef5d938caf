package api

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/dataimporter/manager"
	"github.com/travigo/idletracker/pkg/realtime/idledetector"
	"github.com/travigo/idletracker/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the control API of the idle detector",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
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
					&cli.BoolFlag{
						Name:  "autostart",
						Value: true,
						Usage: "start the idle detector with the server",
					},
				}, idledetector.ConfigFlags...),
				Action: func(c *cli.Context) error {
					config, err := idledetector.ConfigFromCLI(c)
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					controller, err := idledetector.NewQueueController(config, c.String("datasources"), c.StringSlice("dataset"))
					if err != nil {
						return err
					}

					if c.Bool("autostart") {
						if err := controller.Start(); err != nil {
							return err
						}
					}

					log.Info().Str("listen", c.String("listen")).Msg("Starting web API")

					return SetupServer(c.String("listen"), controller, c.String("datasources"))
				},
			},
		},
	}
}
