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
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/etherna/go-epochfeed/storage/feed/lookup"
)

var epochCommand = &cli.Command{
	Name:      "epoch",
	Usage:     "Show an epoch and its neighbours",
	ArgsUsage: "<start/level>",
	Action:    showEpoch,
	Flags:     []cli.Flag{atFlag},
	Description: `
Prints the time span, identity and relatives of an epoch. With --at, also
prints the epoch the next update would be published at.`,
}

func showEpoch(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("need exactly one epoch argument")
	}
	epoch, err := lookup.ParseEpochIndex(ctx.Args().First())
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	printEpoch(w, epoch)
	if ctx.IsSet(atFlag.Name) {
		at := ctx.Uint64(atFlag.Name)
		next, err := epoch.Next(at)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "next:   %v\n", next)
	}
	return nil
}

func printEpoch(w io.Writer, epoch lookup.EpochIndex) {
	id, _ := epoch.MarshalBinary()
	side := "right"
	if epoch.IsLeft() {
		side = "left"
	}
	fmt.Fprintf(w, "epoch:  %v (%s)\n", epoch, side)
	fmt.Fprintf(w, "span:   [%d, %d)\n", epoch.Start(), epoch.End())
	fmt.Fprintf(w, "id:     %s\n", hexutil.Encode(id))
	if parent, err := epoch.Parent(); err == nil {
		fmt.Fprintf(w, "parent: %v\n", parent)
	}
	if epoch.Level() > 0 {
		left, _ := epoch.ChildAt(epoch.Start())
		fmt.Fprintf(w, "left:   %v\n", left)
		fmt.Fprintf(w, "right:  %v\n", left.Right())
	}
}
