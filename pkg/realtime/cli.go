package realtime

import (
	"github.com/travigo/idletracker/pkg/realtime/idledetector"
	"github.com/travigo/idletracker/pkg/realtime/idlesink"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "realtime",
		Usage: "Realtime sources",
		Subcommands: []*cli.Command{
			idledetector.RegisterCLI(),
			idlesink.RegisterCLI(),
		},
	}
}
