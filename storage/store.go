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

import "context"

// ChunkGetter retrieves chunk data by address. Implementations return
// ErrChunkNotFound (possibly wrapped) for absent chunks and any other
// error for failures that say nothing about the chunk's existence.
type ChunkGetter interface {
	Get(ctx context.Context, addr Address) ([]byte, error)
}

// ChunkGetterFunc adapts a function to the ChunkGetter interface.
type ChunkGetterFunc func(ctx context.Context, addr Address) ([]byte, error)

// Get calls f(ctx, addr).
func (f ChunkGetterFunc) Get(ctx context.Context, addr Address) ([]byte, error) {
	return f(ctx, addr)
}

// ChunkStore is a ChunkGetter that can also persist chunks.
type ChunkStore interface {
	ChunkGetter
	Put(ctx context.Context, addr Address, data []byte) error
	Has(ctx context.Context, addr Address) (bool, error)
	Close() error
}
