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
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/etherna/go-epochfeed/api"
	"github.com/etherna/go-epochfeed/api/client"
	"github.com/etherna/go-epochfeed/storage"
	"github.com/etherna/go-epochfeed/storage/feed"
	"github.com/etherna/go-epochfeed/storage/feed/lookup"
)

var (
	lookupCommand = &cli.Command{
		Name:   "lookup",
		Usage:  "Find the last update of a feed before a date",
		Action: lookupFeed,
		Flags:  []cli.Flag{atFlag, hintFlag},
	}
	nextCommand = &cli.Command{
		Name:      "next",
		Usage:     "Prepare the next update of a feed",
		ArgsUsage: "<content>",
		Action:    nextUpdate,
		Flags: []cli.Flag{
			hintFlag,
			&cli.StringFlag{
				Name:  "file",
				Usage: "Read the update content from a file",
			},
			&cli.BoolFlag{
				Name:  "put",
				Usage: "Store the update payload in the local store",
			},
		},
	}
	watchCommand = &cli.Command{
		Name:   "watch",
		Usage:  "Print new updates of a feed as they are published",
		Action: watchFeed,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Polling interval",
				Value: 10 * time.Second,
			},
		},
	}
	getCommand = &cli.Command{
		Name:      "get",
		Usage:     "Fetch a feed update by reference",
		ArgsUsage: "<reference> <start/level>",
		Action:    getUpdate,
	}
)

// openStores opens the local store described by config and the net store
// reading through it.
func openStores(config *api.Config) (storage.ChunkStore, *storage.NetStore, error) {
	var local storage.ChunkStore
	if config.StorePath != "" {
		ldb, err := storage.NewLDBStore(config.StorePath)
		if err != nil {
			return nil, nil, err
		}
		local = ldb
	} else {
		local = storage.NewMemStore(config.CacheCapacity)
	}
	var remote storage.ChunkGetter
	if config.Gateway != "" {
		remote = client.NewClient(config.Gateway)
	}
	return local, storage.NewNetStore(local, remote, config.RetrieveTimeout), nil
}

// feedCoordinates parses the configured account and topic. A topic that is
// not 32 bytes of 0x prefixed hex is taken as a topic name.
func feedCoordinates(config *api.Config) (common.Address, feed.Topic, error) {
	var topic feed.Topic
	if config.Account == "" {
		return common.Address{}, topic, errors.New("missing feed account")
	}
	account, err := feed.ParseAccount(config.Account)
	if err != nil {
		return common.Address{}, topic, err
	}
	if strings.HasPrefix(config.Topic, "0x") && len(config.Topic) == 2+2*feed.TopicLength {
		err = topic.FromHex(config.Topic)
	} else {
		topic, err = feed.NewTopic(config.Topic, nil)
	}
	return account, topic, err
}

func hintArg(ctx *cli.Context) (*lookup.EpochIndex, error) {
	if !ctx.IsSet(hintFlag.Name) {
		return nil, nil
	}
	hint, err := lookup.ParseEpochIndex(ctx.String(hintFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid hint: %v", err)
	}
	return &hint, nil
}

func printChunk(w io.Writer, chunk *feed.Chunk) {
	ts := chunk.Timestamp()
	fmt.Fprintf(w, "epoch:     %v\n", chunk.Index())
	fmt.Fprintf(w, "reference: %s\n", chunk.Reference())
	fmt.Fprintf(w, "timestamp: %d (%s)\n", ts.Time, ts.Unix().UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "content:   %s\n", hexutil.Encode(chunk.ContentPayload()))
}

func lookupFeed(ctx *cli.Context) error {
	config, err := prepare(ctx)
	if err != nil {
		return err
	}
	account, topic, err := feedCoordinates(config)
	if err != nil {
		return err
	}
	hint, err := hintArg(ctx)
	if err != nil {
		return err
	}
	at := feed.TimestampProvider.Now().Time
	if ctx.IsSet(atFlag.Name) {
		at = ctx.Uint64(atFlag.Name)
	}

	local, store, err := openStores(config)
	if err != nil {
		return err
	}
	defer local.Close()

	chunk, err := feed.NewEpochFeed(store).TryFind(ctx.Context, account, topic, at, hint)
	if err != nil {
		return err
	}
	if chunk == nil {
		return fmt.Errorf("no updates found at or before %d", at)
	}
	printChunk(ctx.App.Writer, chunk)
	return nil
}

func nextUpdate(ctx *cli.Context) error {
	config, err := prepare(ctx)
	if err != nil {
		return err
	}
	account, topic, err := feedCoordinates(config)
	if err != nil {
		return err
	}
	hint, err := hintArg(ctx)
	if err != nil {
		return err
	}
	var content []byte
	switch {
	case ctx.IsSet("file"):
		if content, err = os.ReadFile(ctx.String("file")); err != nil {
			return err
		}
	case ctx.NArg() == 1:
		content = []byte(ctx.Args().First())
	default:
		return errors.New("need exactly one content argument or --file")
	}

	local, store, err := openStores(config)
	if err != nil {
		return err
	}
	defer local.Close()

	chunk, err := feed.NewEpochFeed(store).CreateNextChunk(ctx.Context, account, topic, content, hint)
	if err != nil {
		return err
	}
	if ctx.Bool("put") {
		if err := local.Put(ctx.Context, chunk.Address(), chunk.Payload()); err != nil {
			return err
		}
		log.Info("Stored feed update", "epoch", chunk.Index(), "ref", chunk.Address().Log())
	}
	identifier, err := feed.BuildIdentifier(topic[:], chunk.Index())
	if err != nil {
		return err
	}
	printChunk(ctx.App.Writer, chunk)
	fmt.Fprintf(ctx.App.Writer, "id:        %s\n", hexutil.Encode(identifier))
	fmt.Fprintf(ctx.App.Writer, "payload:   %s\n", hexutil.Encode(chunk.Payload()))
	return nil
}

func watchFeed(ctx *cli.Context) error {
	config, err := prepare(ctx)
	if err != nil {
		return err
	}
	account, topic, err := feedCoordinates(config)
	if err != nil {
		return err
	}
	interval := ctx.Duration("interval")
	if interval <= 0 {
		return fmt.Errorf("invalid interval %v", interval)
	}

	local, store, err := openStores(config)
	if err != nil {
		return err
	}
	defer local.Close()

	sigctx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		handler = feed.NewHandler(store)
		ticker  = time.NewTicker(interval)
		last    string
	)
	defer ticker.Stop()
	log.Info("Watching feed", "account", account, "topic", topic.Hex(), "interval", interval)
	for {
		chunk, err := handler.LookupLatest(sigctx, account, topic)
		switch {
		case errors.Is(err, feed.ErrNoUpdates):
			log.Debug("No feed updates yet")
		case err != nil && sigctx.Err() != nil:
			return nil
		case err != nil:
			log.Warn("Feed lookup failed", "err", err)
		case chunk.Reference() != last:
			last = chunk.Reference()
			printChunk(ctx.App.Writer, chunk)
		}
		select {
		case <-sigctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func getUpdate(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return errors.New("need a reference and an epoch")
	}
	config, err := prepare(ctx)
	if err != nil {
		return err
	}
	addr, err := storage.ParseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	epoch, err := lookup.ParseEpochIndex(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	local, store, err := openStores(config)
	if err != nil {
		return err
	}
	defer local.Close()

	chunk, err := feed.NewEpochFeed(store).TryGetChunk(ctx.Context, addr, epoch)
	if err != nil {
		return err
	}
	if chunk == nil {
		return fmt.Errorf("no feed update at %s", addr.Hex())
	}
	printChunk(ctx.App.Writer, chunk)
	return nil
}
