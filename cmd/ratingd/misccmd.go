package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/tos-network/ratingd/core/rawdb"
	"github.com/tos-network/ratingd/params"
	"github.com/urfave/cli/v2"
)

var (
	versionCommand = &cli.Command{
		Action:    version,
		Name:      "version",
		Usage:     "Print version numbers",
		ArgsUsage: " ",
		Description: `
The output of this command is supposed to be machine-readable.
`,
	}
	licenseCommand = &cli.Command{
		Action:    license,
		Name:      "license",
		Usage:     "Display license information",
		ArgsUsage: " ",
	}
)

func version(ctx *cli.Context) error {
	fmt.Println(strings.Title(clientIdentifier))
	fmt.Println("Version:", params.VersionWithCommit(gitCommit, gitDate))
	fmt.Println("Rating Program:", params.RatingProgramID)
	fmt.Println("System Program:", params.SystemProgramID)
	fmt.Println("Database Schema:", rawdb.DatabaseVersion)
	fmt.Println("Go Version:", runtime.Version())
	fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

func license(_ *cli.Context) error {
	fmt.Println(`Ratingd licensing summary

- Default repository license: GNU LGPL-3.0 (see LICENSE)
- cmd/ command applications include GPL-3.0-governed components (see COPYING)

See NOTICE for origin and attribution.`)
	return nil
}
