package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "tracer",
		Usage: "Replay Move transactions and print source attributed call traces",
		Flags: []cli.Flag{
			chainIDFlag,
			replayEndpointFlag,
			compileEndpointFlag,
			logLevelFlag,
		},
		Commands: []*cli.Command{
			restCmd,
			dbCmd,
			mirrorCmd,
		},
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
