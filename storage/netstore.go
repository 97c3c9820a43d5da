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

package storage

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

const defaultRetrieveTimeout = 30 * time.Second

// NetStore combines a local chunk store with a remote one, eg. a gateway
// client. Local misses are retried remotely; every remote request runs
// under its own deadline derived from the caller's context.
type NetStore struct {
	localStore      ChunkGetter
	remote          ChunkGetter
	retrieveTimeout time.Duration
}

// NewNetStore creates a NetStore. Either side may be nil. A zero timeout
// selects the default.
func NewNetStore(localStore ChunkGetter, remote ChunkGetter, retrieveTimeout time.Duration) *NetStore {
	if retrieveTimeout <= 0 {
		retrieveTimeout = defaultRetrieveTimeout
	}
	return &NetStore{
		localStore:      localStore,
		remote:          remote,
		retrieveTimeout: retrieveTimeout,
	}
}

// Get is the entrypoint for chunk retrieval requests.
func (n *NetStore) Get(ctx context.Context, addr Address) ([]byte, error) {
	if n.localStore != nil {
		data, err := n.localStore.Get(ctx, addr)
		if err == nil {
			return data, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	if n.remote == nil {
		return nil, ErrChunkNotFound
	}

	rctx, cancel := context.WithTimeout(ctx, n.retrieveTimeout)
	defer cancel()

	data, err := n.remote.Get(rctx, addr)
	if err != nil {
		log.Trace("netstore.get: remote retrieval failed", "ref", addr.Log(), "err", err)
		return nil, err
	}
	return data, nil
}
