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

package feed

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/etherna/go-epochfeed/storage"
	"github.com/etherna/go-epochfeed/storage/feed/lookup"
)

const (
	MinUnixTimestamp uint64 = 0
	MaxUnixTimestamp uint64 = lookup.MaxStart

	// maxLookupMoves bounds the steps of a single lookup phase. Climbing
	// from a leaf to the root takes at most 2*MaxLevel+1 moves.
	maxLookupMoves = 2*lookup.MaxLevel + 1
)

// chunkSource says where tryGetChunk finds the chunk of an epoch.
type chunkSource interface {
	reference(index lookup.EpochIndex) storage.Address
}

// feedSource derives the chunk address from the feed coordinates.
type feedSource struct {
	account common.Address
	topic   Topic
}

func (s feedSource) reference(index lookup.EpochIndex) storage.Address {
	return feedReference(s.account, s.topic, index)
}

// referenceSource is a chunk address known in advance.
type referenceSource struct {
	address storage.Address
}

func (s referenceSource) reference(lookup.EpochIndex) storage.Address {
	return s.address
}

// readFunc returns the chunk published at epoch, or nil if there is none.
type readFunc func(epoch lookup.EpochIndex) (*Chunk, error)

// EpochFeed reads and prepares updates of epoch based feeds.
// It keeps no state besides its chunk store and is safe for concurrent use.
type EpochFeed struct {
	chunkStore storage.ChunkGetter
	log        log.Logger
}

// NewEpochFeed creates a feed engine reading chunks from store.
func NewEpochFeed(store storage.ChunkGetter) *EpochFeed {
	return &EpochFeed{
		chunkStore: store,
		log:        log.New("pkg", "feed"),
	}
}

// CreateNextChunk prepares the update that account publishes now on topic
// with the given content. The returned chunk still has to be signed and
// uploaded by the caller.
func (f *EpochFeed) CreateNextChunk(ctx context.Context, account common.Address, topic Topic, content []byte, hint *lookup.EpochIndex) (*Chunk, error) {
	now := TimestampProvider.Now()
	payload, err := BuildChunkPayload(content, now)
	if err != nil {
		return nil, err
	}
	last, err := f.TryFind(ctx, account, topic, now.Time, hint)
	if err != nil {
		return nil, err
	}

	var next lookup.EpochIndex
	if last == nil {
		next = lookup.Root()
		if !next.ContainsTime(now.Time) {
			next = next.Right()
		}
	} else {
		next, err = last.Index().Next(now.Time)
		if err != nil {
			return nil, wrapError(ErrInvalidValue, err, "cannot place update after epoch %v", last.Index())
		}
	}
	f.log.Debug("Prepared next feed update", "account", account, "topic", topic.Hex(), "epoch", next, "time", now.Time)
	return NewChunk(next, payload, feedReference(account, topic, next))
}

// TryFind returns the last update published by account on topic at or
// before at, or nil when there is none. hint is an epoch believed to be
// close to the answer, typically the one found by a previous lookup.
func (f *EpochFeed) TryFind(ctx context.Context, account common.Address, topic Topic, at uint64, hint *lookup.EpochIndex) (*Chunk, error) {
	if at > MaxUnixTimestamp {
		return nil, NewErrorf(ErrInvalidValue, "time %d is out of range [%d, %d]", at, MinUnixTimestamp, MaxUnixTimestamp)
	}
	if f.chunkStore == nil {
		return nil, NewError(ErrInit, "no chunk store configured")
	}

	var (
		src   = feedSource{account: account, topic: topic}
		reads int
	)
	read := func(epoch lookup.EpochIndex) (*Chunk, error) {
		reads++
		return f.tryGetChunk(ctx, src, epoch)
	}

	start := findStartingEpochOffline(hint, at)
	anchor, err := tryFindStartingEpochChunkOnline(read, at, start)
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		f.log.Debug("Feed lookup found no updates", "account", account, "topic", topic.Hex(), "at", at, "start", start, "reads", reads)
		return nil, nil
	}
	chunk, err := findLastEpochChunkBeforeDate(read, at, anchor)
	if err != nil {
		return nil, err
	}
	f.log.Debug("Feed lookup finished", "account", account, "topic", topic.Hex(), "at", at, "start", start, "epoch", chunk.Index(), "reads", reads)
	return chunk, nil
}

// TryGetChunk fetches the chunk stored at address and decodes it as the
// update of index. It returns nil if the chunk is missing or undecodable.
func (f *EpochFeed) TryGetChunk(ctx context.Context, address storage.Address, index lookup.EpochIndex) (*Chunk, error) {
	if f.chunkStore == nil {
		return nil, NewError(ErrInit, "no chunk store configured")
	}
	return f.tryGetChunk(ctx, referenceSource{address: address}, index)
}

// findStartingEpochOffline guesses, without touching the store, the epoch
// a lookup at the given time starts from.
func findStartingEpochOffline(hint *lookup.EpochIndex, at uint64) lookup.EpochIndex {
	if hint != nil {
		epoch := *hint
		for !epoch.ContainsTime(at) && epoch.Level() < lookup.MaxLevel {
			epoch, _ = epoch.Parent()
		}
		if epoch.ContainsTime(at) {
			return epoch
		}
	}
	root := lookup.Root()
	if !root.ContainsTime(at) {
		return root.Right()
	}
	return root
}

// tryFindStartingEpochChunkOnline probes the store from epoch until it
// finds an update not newer than at. A missing or too recent update on a
// right epoch sends the search to its left sibling, on a left epoch to its
// parent. It returns nil once the left half of the tree is exhausted.
func tryFindStartingEpochChunkOnline(read readFunc, at uint64, epoch lookup.EpochIndex) (*Chunk, error) {
	for moves := 0; moves <= maxLookupMoves; moves++ {
		chunk, err := read(epoch)
		if err != nil {
			return nil, err
		}
		if chunk != nil && chunk.Timestamp().Time <= at {
			return chunk, nil
		}
		if !epoch.IsLeft() {
			epoch = epoch.Left()
			continue
		}
		if epoch.Level() == lookup.MaxLevel {
			return nil, nil
		}
		if epoch, err = epoch.Parent(); err != nil {
			return nil, err
		}
	}
	return nil, ErrLookupExhausted
}

// findLastEpochChunkBeforeDate walks down from anchor while a more recent
// update not newer than at exists below it.
func findLastEpochChunkBeforeDate(read readFunc, at uint64, anchor *Chunk) (*Chunk, error) {
	for moves := 0; moves <= maxLookupMoves; moves++ {
		epoch := anchor.Index()
		if epoch.Level() == 0 || at < epoch.Start() {
			return anchor, nil
		}
		// Updates below the anchor can't be newer than its last second.
		working := at
		if !epoch.ContainsTime(working) {
			working = epoch.End() - 1
		}

		child, err := epoch.ChildAt(working)
		if err != nil {
			return nil, err
		}
		chunk, err := read(child)
		if err != nil {
			return nil, err
		}
		if chunk != nil && chunk.Timestamp().Time <= working {
			anchor = chunk
			continue
		}
		if child.IsLeft() {
			return anchor, nil
		}
		// The left sibling ends before working, no need to check its time.
		chunk, err = read(child.Left())
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			return anchor, nil
		}
		anchor = chunk
	}
	return nil, ErrLookupExhausted
}

// tryGetChunk fetches the chunk of index from src. Missing and undecodable
// chunks yield nil, any other store failure is returned.
func (f *EpochFeed) tryGetChunk(ctx context.Context, src chunkSource, index lookup.EpochIndex) (*Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr := src.reference(index)
	data, err := f.chunkStore.Get(ctx, addr)
	if err != nil {
		if storage.IsNotFound(err) {
			f.log.Trace("Feed chunk not found", "epoch", index, "ref", addr.Log())
			return nil, nil
		}
		return nil, wrapError(ErrIO, err, "cannot retrieve feed chunk %v at epoch %v", addr.Log(), index)
	}
	chunk, err := NewChunk(index, data, addr)
	if err != nil {
		f.log.Debug("Ignoring invalid feed chunk", "epoch", index, "ref", addr.Log(), "err", err)
		return nil, nil
	}
	f.log.Trace("Feed chunk found", "epoch", index, "ref", addr.Log(), "time", chunk.Timestamp().Time)
	return chunk, nil
}
