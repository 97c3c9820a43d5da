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

// memory storage layer for chunk data

package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
)

const (
	defaultCacheCapacity = 5000
)

// MemStore keeps up to capacity chunks in memory, evicting the least
// recently used one when full.
type MemStore struct {
	cache *lru.Cache
}

// NewMemStore creates a MemStore. A zero capacity selects the default.
func NewMemStore(capacity uint) (m *MemStore) {
	if capacity == 0 {
		capacity = defaultCacheCapacity
	}
	c, err := lru.New(int(capacity))
	if err != nil {
		panic(err)
	}
	return &MemStore{
		cache: c,
	}
}

func (m *MemStore) Get(ctx context.Context, addr Address) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m.cache.Get(string(addr))
	if !ok {
		return nil, ErrChunkNotFound
	}
	data := v.([]byte)
	return append([]byte(nil), data...), nil
}

func (m *MemStore) Put(ctx context.Context, addr Address, data []byte) error {
	if len(addr) != AddressLength {
		return ErrInvalidAddress
	}
	m.cache.Add(string(addr), append([]byte(nil), data...))
	return nil
}

func (m *MemStore) Has(ctx context.Context, addr Address) (bool, error) {
	return m.cache.Contains(string(addr)), nil
}

// Len returns the number of chunks currently held.
func (m *MemStore) Len() int {
	return m.cache.Len()
}

// Close memstore
func (m *MemStore) Close() error {
	m.cache.Purge()
	return nil
}
