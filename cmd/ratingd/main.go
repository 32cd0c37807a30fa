// ratingd is the rating node: it stores rating records under derived
// addresses and serves them over HTTP.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/tos-network/ratingd/cmd/utils"
	"github.com/tos-network/ratingd/internal/flags"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/node"
	"github.com/urfave/cli/v2"
)

const (
	clientIdentifier = "ratingd" // Client identifier printed in config dumps
)

var (
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = flags.NewApp(gitCommit, gitDate, "the rating record node")
)

func init() {
	app.Action = ratingd
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		dumpConfigCommand,
		versionCommand,
		licenseCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Flags = append(app.Flags, utils.ConfigFileFlag)
	app.Flags = append(app.Flags, utils.NodeFlags...)
	app.Flags = append(app.Flags, utils.LogFlags...)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ratingd is the main entry point into the system if no special subcommand is
// run. It creates a default node based on the command line arguments and runs
// it in blocking mode, waiting for it to be shut down.
func ratingd(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %q", args[0])
	}
	cfg := makeConfig(ctx)
	if err := log.Setup(cfg.Log); err != nil {
		utils.Fatalf("Failed to set up logging: %v", err)
	}
	stack, err := node.New(&cfg)
	if err != nil {
		utils.Fatalf("Failed to create the node: %v", err)
	}
	defer stack.Close()

	utils.StartNode(stack)
	log.Info("Rating node started", "http", stack.HTTPEndpoint(), "program", cfg.ProgramID, "datadir", cfg.DataDir)
	stack.Wait()
	return nil
}
