// ratingctl manages wallet keys and talks to a rating node.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tos-network/ratingd/cmd/utils"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/internal/flags"
	"github.com/tos-network/ratingd/node"
	"github.com/tos-network/ratingd/ratingclient"
	"github.com/urfave/cli/v2"
)

const (
	defaultKeyfileName = "ratingkey.hex"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var app *cli.App

func init() {
	app = flags.NewApp(gitCommit, gitDate, "a rating node client and key manager")
	app.Flags = []cli.Flag{rpcFlag, programFlag, jsonFlag}
	app.Commands = []*cli.Command{
		commandKey,
		commandDerive,
		commandEncode,
		commandCreate,
		commandShow,
		commandList,
		commandAirdrop,
	}
}

// Commonly used command line flags.
var (
	rpcFlag = &cli.StringFlag{
		Name:  "rpc",
		Usage: "HTTP endpoint of the rating node",
		Value: fmt.Sprintf("http://%s:%d", node.DefaultHTTPHost, node.DefaultHTTPPort),
	}
	programFlag = &cli.StringFlag{
		Name:  "program",
		Usage: "base58 identity of the rating program",
		Value: node.DefaultConfig.ProgramID.String(),
	}
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output JSON instead of human-readable format",
	}
	keyfileFlag = &cli.StringFlag{
		Name:  "key",
		Usage: "file holding the hex encoded wallet seed",
		Value: defaultKeyfileName,
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "deadline for node requests",
		Value: 10 * time.Second,
	}
)

func main() {
	if err := app.Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}

// dialNode connects to the node named by --rpc and returns a context bounded
// by --timeout.
func dialNode(ctx *cli.Context) (*ratingclient.Client, context.Context, context.CancelFunc, error) {
	client, err := ratingclient.Dial(ctx.String(rpcFlag.Name))
	if err != nil {
		return nil, nil, nil, err
	}
	rctx, cancel := context.WithTimeout(ctx.Context, ctx.Duration(timeoutFlag.Name))
	return client, rctx, cancel, nil
}

func programID(ctx *cli.Context) (common.Address, error) {
	id, err := common.Base58ToAddress(ctx.String(programFlag.Name))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid --%s: %v", programFlag.Name, err)
	}
	return id, nil
}

// printJSON writes v as indented JSON to the app's output.
func printJSON(ctx *cli.Context, v interface{}) error {
	str, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON object: %v", err)
	}
	fmt.Fprintln(ctx.App.Writer, string(str))
	return nil
}
