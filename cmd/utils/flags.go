// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package utils contains internal helper functions for ratingd commands.
package utils

import (
	"fmt"
	"math"
	godebug "runtime/debug"
	"strings"

	gopsutil "github.com/shirou/gopsutil/mem"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/internal/flags"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/node"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// General settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
	DataDirFlag = &cli.PathFlag{
		Name:     "datadir",
		Usage:    "Data directory for the record database",
		Value:    node.DefaultDataDir(),
		Category: flags.RatingCategory,
	}
	DeveloperFlag = &cli.BoolFlag{
		Name:     "dev",
		Usage:    "Ephemeral in-memory node with the airdrop faucet enabled",
		Category: flags.RatingCategory,
	}
	ProgramIDFlag = &cli.StringFlag{
		Name:     "program",
		Usage:    "Base58 identity the rating program is deployed under",
		Value:    node.DefaultConfig.ProgramID.String(),
		Category: flags.RatingCategory,
	}
	RentLamportsFlag = &cli.Uint64Flag{
		Name:     "rent.lamports",
		Usage:    "Rent charged per byte-year, in lamports",
		Value:    node.DefaultConfig.Rent.LamportsPerByteYear,
		Category: flags.RatingCategory,
	}
	RentThresholdFlag = &cli.Uint64Flag{
		Name:     "rent.threshold",
		Usage:    "Years of rent a slot must hold to be exempt, in basis points",
		Value:    node.DefaultConfig.Rent.ExemptionThresholdBps,
		Category: flags.RatingCategory,
	}

	// Performance tuning settings
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to the database and account cache",
		Value:    node.DefaultConfig.DBCache,
		Category: flags.PerfCategory,
	}
	CacheHandlesFlag = &cli.IntFlag{
		Name:     "cache.handles",
		Usage:    "Maximum number of open database files",
		Value:    node.DefaultConfig.DBHandles,
		Category: flags.PerfCategory,
	}

	// HTTP settings
	HTTPListenAddrFlag = &cli.StringFlag{
		Name:     "http.addr",
		Usage:    "HTTP API listening interface (empty disables the API)",
		Value:    node.DefaultHTTPHost,
		Category: flags.APICategory,
	}
	HTTPPortFlag = &cli.IntFlag{
		Name:     "http.port",
		Usage:    "HTTP API listening port",
		Value:    node.DefaultHTTPPort,
		Category: flags.APICategory,
	}
	HTTPCORSDomainFlag = &cli.StringFlag{
		Name:     "http.corsdomain",
		Usage:    "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
		Value:    "",
		Category: flags.APICategory,
	}

	// Faucet settings
	FaucetEnabledFlag = &cli.BoolFlag{
		Name:     "faucet",
		Usage:    "Enable the development airdrop endpoint",
		Category: flags.FaucetCategory,
	}
	FaucetMaxFlag = &cli.Uint64Flag{
		Name:     "faucet.max",
		Usage:    "Largest single airdrop, in lamports",
		Value:    node.DefaultConfig.Faucet.MaxLamports,
		Category: flags.FaucetCategory,
	}
	FaucetRateFlag = &cli.Float64Flag{
		Name:     "faucet.rate",
		Usage:    "Sustained airdrops per second",
		Value:    node.DefaultConfig.Faucet.Rate,
		Category: flags.FaucetCategory,
	}
	FaucetBurstFlag = &cli.IntFlag{
		Name:     "faucet.burst",
		Usage:    "Airdrops allowed in a burst",
		Value:    node.DefaultConfig.Faucet.Burst,
		Category: flags.FaucetCategory,
	}

	// Logging and debug settings
	VerbosityFlag = &cli.StringFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: crit, error, warn, info, debug, trace (or 0-5)",
		Value:    "info",
		Category: flags.LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}
	LogNoColorFlag = &cli.BoolFlag{
		Name:     "log.nocolor",
		Usage:    "Disable colours in terminal logs",
		Category: flags.LoggingCategory,
	}

	// Metrics flags
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable metrics collection and reporting",
		Category: flags.MetricsCategory,
	}
	// MetricsHTTPFlag defines the endpoint for a stand-alone metrics HTTP endpoint.
	// Since the pprof service enables sensitive/vulnerable behavior, this allows a user
	// to enable a public-OK metrics endpoint without having to worry about ALSO exposing
	// other profiling behavior or information.
	MetricsHTTPFlag = &cli.StringFlag{
		Name:     "metrics.addr",
		Usage:    "Enable stand-alone metrics HTTP server listening interface",
		Value:    node.DefaultConfig.Metrics.HTTP,
		Category: flags.MetricsCategory,
	}
	MetricsPortFlag = &cli.IntFlag{
		Name:     "metrics.port",
		Usage:    "Metrics HTTP server listening port",
		Value:    node.DefaultConfig.Metrics.Port,
		Category: flags.MetricsCategory,
	}
)

var (
	// NodeFlags is the set of flags understood by SetNodeConfig.
	NodeFlags = []cli.Flag{
		DataDirFlag,
		DeveloperFlag,
		ProgramIDFlag,
		RentLamportsFlag,
		RentThresholdFlag,
		CacheFlag,
		CacheHandlesFlag,
		HTTPListenAddrFlag,
		HTTPPortFlag,
		HTTPCORSDomainFlag,
		FaucetEnabledFlag,
		FaucetMaxFlag,
		FaucetRateFlag,
		FaucetBurstFlag,
		MetricsEnabledFlag,
		MetricsHTTPFlag,
		MetricsPortFlag,
	}
	// LogFlags configure the root logger.
	LogFlags = []cli.Flag{
		VerbosityFlag,
		LogJSONFlag,
		LogNoColorFlag,
	}
)

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

// setHTTP creates the HTTP listener interface string from the set
// command line flags.
func setHTTP(ctx *cli.Context, cfg *node.Config) {
	if ctx.IsSet(HTTPListenAddrFlag.Name) {
		cfg.HTTPHost = ctx.String(HTTPListenAddrFlag.Name)
	}
	if ctx.IsSet(HTTPPortFlag.Name) {
		cfg.HTTPPort = ctx.Int(HTTPPortFlag.Name)
	}
	if ctx.IsSet(HTTPCORSDomainFlag.Name) {
		cfg.HTTPCors = SplitAndTrim(ctx.String(HTTPCORSDomainFlag.Name))
	}
}

func setDatabase(ctx *cli.Context, cfg *node.Config) {
	if ctx.IsSet(CacheFlag.Name) {
		cfg.DBCache = ctx.Int(CacheFlag.Name)
	}
	// Cap the cache allowance and tune the garbage collector
	if mem, err := gopsutil.VirtualMemory(); err == nil {
		if 32<<(^uintptr(0)>>63) == 32 && mem.Total > 2*1024*1024*1024 {
			log.Warn("Lowering memory allowance on 32bit arch", "available", mem.Total/1024/1024, "addressable", 2*1024)
			mem.Total = 2 * 1024 * 1024 * 1024
		}
		if allowance := int(mem.Total / 1024 / 1024 / 3); cfg.DBCache > allowance {
			log.Warn("Sanitizing cache to Go's GC limits", "provided", cfg.DBCache, "updated", allowance)
			cfg.DBCache = allowance
		}
	}
	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cfg.DBCache)/1024)))
	log.Debug("Sanitizing Go's GC trigger", "percent", int(gogc))
	godebug.SetGCPercent(int(gogc))

	if ctx.IsSet(CacheHandlesFlag.Name) {
		cfg.DBHandles = MakeDatabaseHandles(ctx.Int(CacheHandlesFlag.Name))
	}
}

// MakeDatabaseHandles sanitizes a requested open file allowance.
func MakeDatabaseHandles(max int) int {
	switch {
	case max == 0:
		return node.DefaultConfig.DBHandles
	case max < 16:
		// User specified something unhealthy, just use the default
		log.Error("Database handle limit invalid (<16)", "had", max, "updated", node.DefaultConfig.DBHandles)
		return node.DefaultConfig.DBHandles
	default:
		return max
	}
}

func setRating(ctx *cli.Context, cfg *node.Config) {
	if ctx.IsSet(ProgramIDFlag.Name) {
		id, err := common.Base58ToAddress(ctx.String(ProgramIDFlag.Name))
		if err != nil {
			Fatalf("Invalid program identity %q: %v", ctx.String(ProgramIDFlag.Name), err)
		}
		cfg.ProgramID = id
	}
	if ctx.IsSet(RentLamportsFlag.Name) {
		cfg.Rent.LamportsPerByteYear = ctx.Uint64(RentLamportsFlag.Name)
	}
	if ctx.IsSet(RentThresholdFlag.Name) {
		cfg.Rent.ExemptionThresholdBps = ctx.Uint64(RentThresholdFlag.Name)
	}
}

func setFaucet(ctx *cli.Context, cfg *node.Config) {
	if ctx.Bool(DeveloperFlag.Name) {
		cfg.Faucet.Enabled = true
	}
	if ctx.IsSet(FaucetEnabledFlag.Name) {
		cfg.Faucet.Enabled = ctx.Bool(FaucetEnabledFlag.Name)
	}
	if ctx.IsSet(FaucetMaxFlag.Name) {
		cfg.Faucet.MaxLamports = ctx.Uint64(FaucetMaxFlag.Name)
	}
	if ctx.IsSet(FaucetRateFlag.Name) {
		cfg.Faucet.Rate = ctx.Float64(FaucetRateFlag.Name)
	}
	if ctx.IsSet(FaucetBurstFlag.Name) {
		cfg.Faucet.Burst = ctx.Int(FaucetBurstFlag.Name)
	}
}

// SetLogConfig applies the logging flags to cfg.
func SetLogConfig(ctx *cli.Context, cfg *log.Config) {
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Level = ctx.String(VerbosityFlag.Name)
	}
	if ctx.IsSet(LogJSONFlag.Name) {
		cfg.JSON = ctx.Bool(LogJSONFlag.Name)
	}
	if ctx.IsSet(LogNoColorFlag.Name) {
		cfg.NoColor = ctx.Bool(LogNoColorFlag.Name)
	}
}

func setMetrics(ctx *cli.Context, cfg *node.Config) {
	if ctx.IsSet(MetricsEnabledFlag.Name) {
		cfg.Metrics.Enabled = ctx.Bool(MetricsEnabledFlag.Name)
	}
	if ctx.IsSet(MetricsHTTPFlag.Name) {
		cfg.Metrics.HTTP = ctx.String(MetricsHTTPFlag.Name)
	}
	if ctx.IsSet(MetricsPortFlag.Name) {
		cfg.Metrics.Port = ctx.Int(MetricsPortFlag.Name)
	}
}

// SetNodeConfig applies node-related command line flags to the config.
func SetNodeConfig(ctx *cli.Context, cfg *node.Config) {
	CheckExclusive(ctx, DeveloperFlag, DataDirFlag)
	SetDataDir(ctx, cfg)
	setDatabase(ctx, cfg)
	setHTTP(ctx, cfg)
	setRating(ctx, cfg)
	setFaucet(ctx, cfg)
	SetLogConfig(ctx, &cfg.Log)
	setMetrics(ctx, cfg)
}

func SetDataDir(ctx *cli.Context, cfg *node.Config) {
	switch {
	case ctx.IsSet(DataDirFlag.Name):
		cfg.DataDir = flags.ExpandPath(ctx.Path(DataDirFlag.Name))
	case ctx.Bool(DeveloperFlag.Name):
		cfg.DataDir = "" // unless explicitly requested, use memory databases
	}
}

// CheckExclusive verifies that only a single instance of the provided flags was
// set by the user. Each flag might optionally be followed by a string type to
// specialize it further.
func CheckExclusive(ctx *cli.Context, args ...interface{}) {
	set := make([]string, 0, 1)
	for i := 0; i < len(args); i++ {
		// Make sure the next argument is a flag and skip if not set
		flag, ok := args[i].(cli.Flag)
		if !ok {
			panic(fmt.Sprintf("invalid argument, not cli.Flag type: %T", args[i]))
		}
		// Check if next arg extends current and expand its name if so
		name := flag.Names()[0]

		if i+1 < len(args) {
			switch option := args[i+1].(type) {
			case string:
				// Extended flag check, make sure value set doesn't conflict with passed in option
				if ctx.String(flag.Names()[0]) == option {
					name += "=" + option
					set = append(set, "--"+name)
				}
				// shift arguments and continue
				i++
				continue

			case cli.Flag:
			default:
				panic(fmt.Sprintf("invalid argument, not cli.Flag or string extension: %T", args[i+1]))
			}
		}
		// Mark the flag if it's set
		if ctx.IsSet(flag.Names()[0]) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		Fatalf("Flags %v can't be used at the same time", strings.Join(set, ", "))
	}
}
