// Command doublezero drives the serviceability program against a local
// ledger snapshot: it derives account addresses, frames instructions, and
// persists the resulting account set back to disk.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "doublezero"
	app.Usage = "operate the DoubleZero control plane"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "doublezero.yaml",
			Usage: "path to the YAML configuration",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug logging",
		},
	}
	app.Commands = []cli.Command{
		initCommand(),
		authorityCommand(),
		configCommand(),
		allowlistCommand(),
		locationCommand(),
		exchangeCommand(),
		contributorCommand(),
		deviceCommand(),
		linkCommand(),
		accessPassCommand(),
		userCommand(),
		resourceCommand(),
		verifyCommand(),
		accountsCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
