// Copyright 2026 The go-epochfeed Authors
// This file is part of the go-epochfeed library.
//
// The go-epochfeed library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-epochfeed library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-epochfeed library. If not, see <http://www.gnu.org/licenses/>.

// epochfeed is a command line client for epoch based feeds.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/etherna/go-epochfeed/api"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	gatewayFlag = &cli.StringFlag{
		Name:  "gateway",
		Usage: "HTTP gateway chunks are downloaded from, empty to stay offline",
		Value: api.DefaultGateway,
	}
	storePathFlag = &cli.StringFlag{
		Name:  "store",
		Usage: "LevelDB directory of the local chunk store (default: in memory)",
	}
	cacheCapacityFlag = &cli.UintFlag{
		Name:  "cache",
		Usage: "Number of chunks kept by the in-memory store",
	}
	retrieveTimeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Deadline of each chunk download",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: api.DefaultVerbosity,
	}
	accountFlag = &cli.StringFlag{
		Name:  "account",
		Usage: "Feed owner account, 0x prefixed",
	}
	topicFlag = &cli.StringFlag{
		Name:  "topic",
		Usage: "Feed topic, as 0x prefixed hex or as a name",
	}
	hintFlag = &cli.StringFlag{
		Name:  "hint",
		Usage: "Epoch near the expected update, as start/level",
	}
	atFlag = &cli.Uint64Flag{
		Name:  "at",
		Usage: "Unix time of the lookup in seconds (default: now)",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:   filepath.Base(os.Args[0]),
		Usage:  "epoch feed client",
		Writer: os.Stdout,
		Flags: []cli.Flag{
			configFileFlag,
			gatewayFlag,
			storePathFlag,
			cacheCapacityFlag,
			retrieveTimeoutFlag,
			verbosityFlag,
			accountFlag,
			topicFlag,
		},
		Commands: []*cli.Command{
			lookupCommand,
			nextCommand,
			watchCommand,
			getCommand,
			epochCommand,
			importCommand,
			exportCommand,
			dumpConfigCommand,
		},
		CommandNotFound: func(ctx *cli.Context, cmd string) {
			fmt.Fprintf(os.Stderr, "No such command: %s\n", cmd)
			os.Exit(1)
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// prepare builds the configuration and installs the logger.
func prepare(ctx *cli.Context) (*api.Config, error) {
	config, err := buildConfig(ctx)
	if err != nil {
		return nil, err
	}
	setDefaultLogger(config.Verbosity)
	log.Debug("Configuration ready", "gateway", config.Gateway, "store", config.StorePath, "timeout", config.RetrieveTimeout)
	return config, nil
}

func setDefaultLogger(verbosity int) {
	glogger := log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, true))
	glogger.Verbosity(log.FromLegacyLevel(verbosity))
	log.SetDefault(log.NewLogger(glogger))
}
