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
	"errors"
	"testing"

	"github.com/etherna/go-epochfeed/storage"
	"github.com/etherna/go-epochfeed/storage/feed/lookup"
)

var errStoreFailure = errors.New("store failure")

type failingStore struct{}

func (failingStore) Get(context.Context, storage.Address) ([]byte, error) {
	return nil, errStoreFailure
}

// TestCreateAndFind publishes a series of updates and looks them up at
// various times.
func TestCreateAndFind(t *testing.T) {
	var (
		ctx   = context.Background()
		store = storage.NewMemStore(0)
		feed  = NewEpochFeed(store)
		clock = useFakeTime(t, 0)
	)

	updates := []struct {
		time  uint64
		epoch lookup.EpochIndex
	}{
		{1, lookup.Root()},
		{5, mustEpoch(t, 0, 31)},
		{10, mustEpoch(t, 0, 30)},
		{1<<31 + 5, mustEpoch(t, 1<<31, 31)},
	}
	for _, u := range updates {
		clock.Set(u.time)
		chunk, err := feed.CreateNextChunk(ctx, testAccount, testTopic, []byte("update"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if chunk.Index() != u.epoch {
			t.Fatalf("update at %d: expected epoch %v, got %v", u.time, u.epoch, chunk.Index())
		}
		if chunk.Timestamp().Time != u.time {
			t.Fatalf("update at %d: got timestamp %d", u.time, chunk.Timestamp().Time)
		}
		if string(chunk.ContentPayload()) != "update" {
			t.Fatalf("update at %d: got content %q", u.time, chunk.ContentPayload())
		}
		if err := store.Put(ctx, chunk.Address(), chunk.Payload()); err != nil {
			t.Fatal(err)
		}
	}

	lookups := []struct {
		at       uint64
		expected uint64 // timestamp of the expected update, 0 for none
	}{
		{0, 0},
		{1, 1},
		{4, 1},
		{5, 5},
		{9, 5},
		{10, 10},
		{1000, 10},
		{1<<31 + 4, 10},
		{1<<31 + 5, 1<<31 + 5},
		{1<<32 + 7, 1<<31 + 5},
		{MaxUnixTimestamp, 1<<31 + 5},
	}
	for _, l := range lookups {
		chunk, err := feed.TryFind(ctx, testAccount, testTopic, l.at, nil)
		if err != nil {
			t.Fatalf("lookup at %d: %v", l.at, err)
		}
		if l.expected == 0 {
			if chunk != nil {
				t.Fatalf("lookup at %d: expected no update, got %v", l.at, chunk)
			}
			continue
		}
		if chunk == nil {
			t.Fatalf("lookup at %d: expected update of %d, got none", l.at, l.expected)
		}
		if ts := chunk.Timestamp().Time; ts != l.expected {
			t.Fatalf("lookup at %d: expected update of %d, got %d", l.at, l.expected, ts)
		}
	}

	// Another feed of the same account sees nothing.
	otherTopic, _ := NewTopic("other", nil)
	chunk, err := feed.TryFind(ctx, testAccount, otherTopic, 1000, nil)
	if err != nil || chunk != nil {
		t.Fatalf("expected no update on another topic, got %v, %v", chunk, err)
	}
}

func TestTryFindWithHint(t *testing.T) {
	ctx := context.Background()

	store := storage.NewMemStore(0)
	publish(t, store, lookup.Root(), 1)
	publish(t, store, mustEpoch(t, 0, 31), 5)
	publish(t, store, mustEpoch(t, 0, 30), 10)
	feed := NewEpochFeed(store)

	hint := mustEpoch(t, 0, 30)
	chunk, err := feed.TryFind(ctx, testAccount, testTopic, 7, &hint)
	if err != nil {
		t.Fatal(err)
	}
	if chunk == nil || chunk.Timestamp().Time != 5 {
		t.Fatalf("expected update of 5, got %v", chunk)
	}

	// A hint far from the answer still finds it.
	hint = mustEpoch(t, 1<<32, 0)
	chunk, err = feed.TryFind(ctx, testAccount, testTopic, 1<<32, &hint)
	if err != nil {
		t.Fatal(err)
	}
	if chunk == nil || chunk.Timestamp().Time != 10 {
		t.Fatalf("expected update of 10, got %v", chunk)
	}
}

func TestTryFindFromRightHint(t *testing.T) {
	store := storage.NewMemStore(0)
	publish(t, store, lookup.Root(), 1)
	publish(t, store, mustEpoch(t, 1<<31, 31), 1<<31+5)
	feed := NewEpochFeed(store)

	hint := mustEpoch(t, 1<<31, 31)
	chunk, err := feed.TryFind(context.Background(), testAccount, testTopic, 1<<31+3, &hint)
	if err != nil {
		t.Fatal(err)
	}
	if chunk == nil || chunk.Index() != lookup.Root() {
		t.Fatalf("expected the root update, got %v", chunk)
	}
}

func TestFindStartingEpochOffline(t *testing.T) {
	hint := func(start uint64, level uint8) *lookup.EpochIndex {
		epoch := mustEpoch(t, start, level)
		return &epoch
	}
	tests := []struct {
		hint     *lookup.EpochIndex
		at       uint64
		expected lookup.EpochIndex
	}{
		{nil, 10, lookup.Root()},
		{nil, 5000000000, lookup.Root().Right()},
		{nil, MaxUnixTimestamp, lookup.Root().Right()},
		{hint(14, 1), 8, mustEpoch(t, 8, 3)},
		{hint(14, 1), 15, mustEpoch(t, 14, 1)},
		{hint(0, 0), 1 << 32, lookup.Root().Right()},
		{hint(1<<32, 32), 3, lookup.Root()},
	}
	for _, tt := range tests {
		if epoch := findStartingEpochOffline(tt.hint, tt.at); epoch != tt.expected {
			t.Errorf("hint %v at %d: expected %v, got %v", tt.hint, tt.at, tt.expected, epoch)
		}
	}
}

func TestFindLastEpochChunkBeforeDate(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore(0)
	feed := NewEpochFeed(store)
	read := func(epoch lookup.EpochIndex) (*Chunk, error) {
		return feed.tryGetChunk(ctx, feedSource{testAccount, testTopic}, epoch)
	}
	anchorAt := func(epoch lookup.EpochIndex, ts uint64) *Chunk {
		payload, _ := BuildChunkPayload(nil, Timestamp{Time: ts})
		chunk, err := NewChunk(epoch, payload, feedReference(testAccount, testTopic, epoch))
		if err != nil {
			t.Fatal(err)
		}
		return chunk
	}

	// Leaf sibling on the left of the working time.
	publish(t, store, mustEpoch(t, 4, 0), 4)
	anchor := anchorAt(mustEpoch(t, 4, 1), 4)
	for _, at := range []uint64{5, 6} {
		chunk, err := findLastEpochChunkBeforeDate(read, at, anchor)
		if err != nil {
			t.Fatal(err)
		}
		if chunk.Index() != mustEpoch(t, 4, 0) {
			t.Fatalf("at %d: expected epoch 4/0, got %v", at, chunk.Index())
		}
	}

	// Anchor at level 0 is final.
	leaf := anchorAt(mustEpoch(t, 4, 0), 4)
	if chunk, _ := findLastEpochChunkBeforeDate(read, 100, leaf); chunk != leaf {
		t.Fatalf("expected leaf anchor, got %v", chunk)
	}

	// Descending into the left child after falling back on it.
	publish(t, store, mustEpoch(t, 8, 1), 9)
	anchor = anchorAt(mustEpoch(t, 8, 2), 8)
	chunk, err := findLastEpochChunkBeforeDate(read, 10, anchor)
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Index() != mustEpoch(t, 8, 1) {
		t.Fatalf("expected epoch 8/1, got %v", chunk.Index())
	}

	// A child newer than the working time is skipped.
	publish(t, store, mustEpoch(t, 16, 2), 19)
	anchor = anchorAt(mustEpoch(t, 16, 3), 16)
	chunk, err = findLastEpochChunkBeforeDate(read, 18, anchor)
	if err != nil {
		t.Fatal(err)
	}
	if chunk != anchor {
		t.Fatalf("expected the anchor, got %v", chunk)
	}
}

func TestLookupProbeBound(t *testing.T) {
	store := &countingStore{ChunkGetter: storage.NewMemStore(0)}
	feed := NewEpochFeed(store)

	hint := mustEpoch(t, MaxUnixTimestamp, 0)
	chunk, err := feed.TryFind(context.Background(), testAccount, testTopic, MaxUnixTimestamp, &hint)
	if err != nil {
		t.Fatal(err)
	}
	if chunk != nil {
		t.Fatalf("expected no update, got %v", chunk)
	}
	if store.reads != 2*(lookup.MaxLevel+1) {
		t.Fatalf("expected %d reads, got %d", 2*(lookup.MaxLevel+1), store.reads)
	}
}

func TestTryFindInvalidArguments(t *testing.T) {
	feed := NewEpochFeed(storage.NewMemStore(0))
	_, err := feed.TryFind(context.Background(), testAccount, testTopic, MaxUnixTimestamp+1, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	var ferr *Error
	_, err = NewEpochFeed(nil).TryFind(context.Background(), testAccount, testTopic, 1, nil)
	if !errors.As(err, &ferr) || ferr.Code() != ErrInit {
		t.Fatalf("expected init error, got %v", err)
	}
}

func TestTryFindStoreErrors(t *testing.T) {
	feed := NewEpochFeed(failingStore{})
	_, err := feed.TryFind(context.Background(), testAccount, testTopic, 100, nil)
	if !errors.Is(err, errStoreFailure) {
		t.Fatalf("expected store failure, got %v", err)
	}
	var ferr *Error
	if !errors.As(err, &ferr) || ferr.Code() != ErrIO {
		t.Fatalf("expected io error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	feed = NewEpochFeed(storage.NewMemStore(0))
	if _, err := feed.TryFind(ctx, testAccount, testTopic, 100, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if _, err := feed.CreateNextChunk(ctx, testAccount, testTopic, nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestTryFindSkipsInvalidChunks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore(0)
	// Too short to hold a timestamp.
	if err := store.Put(ctx, feedReference(testAccount, testTopic, lookup.Root()), []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	chunk, err := NewEpochFeed(store).TryFind(ctx, testAccount, testTopic, 100, nil)
	if err != nil {
		t.Fatal(err)
	}
	if chunk != nil {
		t.Fatalf("expected no update, got %v", chunk)
	}
}

func TestCreateNextChunk(t *testing.T) {
	ctx := context.Background()
	feed := NewEpochFeed(storage.NewMemStore(0))

	useFakeTime(t, 1<<32+100)
	chunk, err := feed.CreateNextChunk(ctx, testAccount, testTopic, []byte("late"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Index() != lookup.Root().Right() {
		t.Fatalf("expected the right root sibling, got %v", chunk.Index())
	}
	expected, _ := BuildFeedReferenceHash(testAccount.Hex(), testTopic[:], chunk.Index())
	if chunk.Reference() != expected.Hex() {
		t.Fatalf("expected reference %s, got %s", expected, chunk.Reference())
	}

	_, err = feed.CreateNextChunk(ctx, testAccount, testTopic, make([]byte, MaxContentPayloadBytesSize+1), nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestTryGetChunk(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore(0)
	publish(t, store, mustEpoch(t, 0, 31), 5)
	feed := NewEpochFeed(store)

	address := feedReference(testAccount, testTopic, mustEpoch(t, 0, 31))
	chunk, err := feed.TryGetChunk(ctx, address, mustEpoch(t, 0, 31))
	if err != nil {
		t.Fatal(err)
	}
	if chunk == nil || chunk.Timestamp().Time != 5 || chunk.Reference() != address.Hex() {
		t.Fatalf("unexpected chunk %v", chunk)
	}

	missing := feedReference(testAccount, testTopic, lookup.Root())
	if chunk, err := feed.TryGetChunk(ctx, missing, lookup.Root()); chunk != nil || err != nil {
		t.Fatalf("expected no chunk, got %v, %v", chunk, err)
	}
}

func TestErrorCodes(t *testing.T) {
	err := wrapError(ErrIO, errStoreFailure, "fetch %d", 1)
	if err.Error() != "fetch 1: store failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if errors.Is(err, ErrInvalidArgument) {
		t.Fatal("io error matches invalid argument")
	}
	if !errors.Is(NewError(ErrLookupDepth, "deep"), ErrLookupExhausted) {
		t.Fatal("expected lookup exhausted")
	}
	if !errors.Is(wrapError(ErrInvalidValue, lookup.ErrInvalidArgument, "bad"), lookup.ErrInvalidArgument) {
		t.Fatal("expected wrapped cause")
	}
}
