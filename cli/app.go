// Package cli contains the pourdemo command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/pourdemo/ingest"
)

const (
	configFlag    = "config"
	debugFlag     = "debug"
	yesFlag       = "yes"
	dumpSceneFlag = "dump-scene"
	topicFlag     = "topic"
)

// NewApp returns a new app with the pourdemo commands, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "pourdemo",
		Usage:           "set up the pour scene and play back planned pour solutions",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "set up the scene, then execute the first solution received from the configured source",
				Action: RunAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    yesFlag,
						Aliases: []string{"y"},
						Usage:   "execute without asking for confirmation",
					},
					&cli.BoolFlag{
						Name:  dumpSceneFlag,
						Usage: "print the planning scene as a world state after playback",
					},
				},
			},
			{
				Name:   "setup-scene",
				Usage:  "add the table, bottle and glass to the planning scene",
				Action: SetupSceneAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  dumpSceneFlag,
						Usage: "print the resulting planning scene as a world state",
					},
				},
			},
			{
				Name:      "inspect",
				Usage:     "summarize the solutions in a solution file or bag",
				ArgsUsage: "<solution.json|recording.bag>",
				Action:    InspectAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  topicFlag,
						Usage: "bag topic holding the solutions",
						Value: ingest.DefaultBagTopic,
					},
				},
			},
		},
	}
}
