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

package main

import (
	"errors"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/etherna/go-epochfeed/storage"
)

var (
	importCommand = &cli.Command{
		Name:      "import",
		Usage:     "Import chunks from a tar archive into the local store",
		ArgsUsage: "<file>",
		Action:    importChunks,
	}
	exportCommand = &cli.Command{
		Name:      "export",
		Usage:     "Export all chunks of the local store to a tar archive",
		ArgsUsage: "<file>",
		Action:    exportChunks,
	}
)

func openLDBStore(ctx *cli.Context) (*storage.LDBStore, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("need exactly one file argument")
	}
	config, err := prepare(ctx)
	if err != nil {
		return nil, err
	}
	if config.StorePath == "" {
		return nil, errors.New("no local store path configured")
	}
	return storage.NewLDBStore(config.StorePath)
}

func importChunks(ctx *cli.Context) error {
	store, err := openLDBStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := store.Import(f)
	if err != nil {
		return err
	}
	log.Info("Imported chunks", "count", n, "file", f.Name())
	return nil
}

func exportChunks(ctx *cli.Context) error {
	store, err := openLDBStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Create(ctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := store.Export(f)
	if err != nil {
		return err
	}
	log.Info("Exported chunks", "count", n, "file", f.Name())
	return f.Sync()
}
