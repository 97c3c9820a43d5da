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

// Package test provides functions that are used for testing
// storage.ChunkStore implementations.
package test

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/etherna/go-epochfeed/storage"
)

// ChunkStore stores n distinct chunks in store and checks that each of them
// is retrievable, that absent chunks are reported with
// storage.ErrChunkNotFound and that a second Put overwrites the first.
func ChunkStore(t *testing.T, store storage.ChunkStore, n int) {
	ctx := context.Background()

	t.Run("PutGet", func(t *testing.T) {
		addrs := make([]storage.Address, n)
		for i := 0; i < n; i++ {
			addrs[i] = testAddress(i)
			data := testData(i)
			if err := store.Put(ctx, addrs[i], data); err != nil {
				t.Fatalf("put chunk %s: %v", addrs[i].Hex(), err)
			}
		}
		for i, addr := range addrs {
			data, err := store.Get(ctx, addr)
			if err != nil {
				t.Fatalf("get chunk %s: %v", addr.Hex(), err)
			}
			if !bytes.Equal(data, testData(i)) {
				t.Fatalf("chunk %s: expected %x, got %x", addr.Hex(), testData(i), data)
			}
			has, err := store.Has(ctx, addr)
			if err != nil {
				t.Fatal(err)
			}
			if !has {
				t.Fatalf("expected chunk %s in store, but it was not found", addr.Hex())
			}
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		addr := testAddress(n + 1)
		data, err := store.Get(ctx, addr)
		if !errors.Is(err, storage.ErrChunkNotFound) {
			t.Fatalf("expected error %v, got %v", storage.ErrChunkNotFound, err)
		}
		if len(data) > 0 {
			t.Fatalf("expected no data, got %x", data)
		}
		has, err := store.Has(ctx, addr)
		if err != nil {
			t.Fatal(err)
		}
		if has {
			t.Fatalf("not expected chunk %s in store, but it was found", addr.Hex())
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		addr := testAddress(n + 2)
		if err := store.Put(ctx, addr, []byte("first")); err != nil {
			t.Fatal(err)
		}
		if err := store.Put(ctx, addr, []byte("second")); err != nil {
			t.Fatal(err)
		}
		data, err := store.Get(ctx, addr)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "second" {
			t.Fatalf("expected last write to win, got %q", data)
		}
	})

	t.Run("InvalidAddress", func(t *testing.T) {
		err := store.Put(ctx, storage.Address{1, 2, 3}, []byte("data"))
		if !errors.Is(err, storage.ErrInvalidAddress) {
			t.Fatalf("expected error %v, got %v", storage.ErrInvalidAddress, err)
		}
	})
}

func testAddress(i int) storage.Address {
	addr := make(storage.Address, storage.AddressLength)
	copy(addr, strconv.FormatInt(int64(i)+1, 16))
	addr[storage.AddressLength-1] = byte(i)
	return addr
}

func testData(i int) []byte {
	data := []byte(strconv.FormatInt(int64(i)+1, 16))
	return append(data, make([]byte, 4096-len(data))...)
}
