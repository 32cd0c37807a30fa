package main

import (
	"fmt"
	"os"

	"github.com/tos-network/ratingd/cmd/utils"
	"github.com/tos-network/ratingd/node"
	"github.com/tos-network/ratingd/params"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "[ <output file> ]",
	Flags:       append(append([]cli.Flag{utils.ConfigFileFlag}, utils.NodeFlags...), utils.LogFlags...),
	Description: `The dumpconfig command shows configuration values.`,
}

// makeConfig layers the defaults, the config file, environment overrides for
// logging and finally the command line flags.
func makeConfig(ctx *cli.Context) node.Config {
	cfg := node.DefaultConfig
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := node.LoadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}
	cfg.Log.ApplyEnv()
	utils.SetNodeConfig(ctx, &cfg)
	return cfg
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	out, err := node.MarshalConfig(&cfg)
	if err != nil {
		return err
	}
	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	fmt.Fprintf(dump, "# %s %s\n\n", clientIdentifier, params.VersionWithMeta)
	dump.Write(out)
	return nil
}
