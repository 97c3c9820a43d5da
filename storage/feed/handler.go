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
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/etherna/go-epochfeed/storage"
	"github.com/etherna/go-epochfeed/storage/feed/lookup"
)

type feedKey struct {
	account common.Address
	topic   Topic
}

// Handler is a feed front end that remembers, for each feed, the epoch of
// the last update it resolved and offers it as a hint to the next lookup.
// Update contents are never cached.
type Handler struct {
	feed  *EpochFeed
	hints map[feedKey]lookup.EpochIndex
	lock  sync.RWMutex
}

// NewHandler creates a Handler reading chunks from store.
func NewHandler(store storage.ChunkGetter) *Handler {
	return &Handler{
		feed:  NewEpochFeed(store),
		hints: make(map[feedKey]lookup.EpochIndex),
	}
}

// Lookup returns the last update of the feed published at or before at.
// It fails with ErrNoUpdates when there is none.
func (h *Handler) Lookup(ctx context.Context, account common.Address, topic Topic, at uint64) (*Chunk, error) {
	chunk, err := h.feed.TryFind(ctx, account, topic, at, h.hint(account, topic, at))
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		return nil, ErrNoUpdates
	}
	h.setHint(account, topic, chunk.Index())
	return chunk, nil
}

// LookupLatest returns the most recent update of the feed.
func (h *Handler) LookupLatest(ctx context.Context, account common.Address, topic Topic) (*Chunk, error) {
	return h.Lookup(ctx, account, topic, TimestampProvider.Now().Time)
}

// NewUpdate prepares the next update of the feed. The hint is left
// untouched until the update is seen on the store by a lookup.
func (h *Handler) NewUpdate(ctx context.Context, account common.Address, topic Topic, content []byte) (*Chunk, error) {
	now := TimestampProvider.Now().Time
	return h.feed.CreateNextChunk(ctx, account, topic, content, h.hint(account, topic, now))
}

// Hint returns the epoch remembered for the feed, if any.
func (h *Handler) Hint(account common.Address, topic Topic) (lookup.EpochIndex, bool) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	epoch, ok := h.hints[feedKey{account, topic}]
	return epoch, ok
}

// hint returns the remembered epoch unless it starts after at.
func (h *Handler) hint(account common.Address, topic Topic, at uint64) *lookup.EpochIndex {
	epoch, ok := h.Hint(account, topic)
	if !ok || epoch.Start() > at {
		return nil
	}
	return &epoch
}

func (h *Handler) setHint(account common.Address, topic Topic, epoch lookup.EpochIndex) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.hints[feedKey{account, topic}] = epoch
}
