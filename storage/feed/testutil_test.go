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
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/etherna/go-epochfeed/storage"
	"github.com/etherna/go-epochfeed/storage/feed/lookup"
)

var (
	testAccount  = common.HexToAddress("0x8d3766440f0d7b949a5e32995d09619a7f86e632")
	testTopic, _ = NewTopic("epochfeed-test", nil)
)

type fakeTimeProvider struct {
	currentTime uint64
}

func (f *fakeTimeProvider) Set(t uint64) {
	f.currentTime = t
}

func (f *fakeTimeProvider) Now() Timestamp {
	return Timestamp{Time: f.currentTime}
}

// useFakeTime replaces TimestampProvider for the duration of the test.
func useFakeTime(t *testing.T, now uint64) *fakeTimeProvider {
	t.Helper()
	tp := &fakeTimeProvider{currentTime: now}
	old := TimestampProvider
	TimestampProvider = tp
	t.Cleanup(func() { TimestampProvider = old })
	return tp
}

// countingStore counts the chunks requested from the wrapped getter.
type countingStore struct {
	storage.ChunkGetter
	reads int
}

func (s *countingStore) Get(ctx context.Context, addr storage.Address) ([]byte, error) {
	s.reads++
	return s.ChunkGetter.Get(ctx, addr)
}

func mustEpoch(t *testing.T, start uint64, level uint8) lookup.EpochIndex {
	t.Helper()
	epoch, err := lookup.NewEpochIndex(start, level)
	if err != nil {
		t.Fatal(err)
	}
	return epoch
}

// publish stores an update of the test feed at epoch, stamped with ts.
func publish(t *testing.T, store storage.ChunkStore, epoch lookup.EpochIndex, ts uint64) {
	t.Helper()
	payload, err := BuildChunkPayload([]byte(epoch.String()), Timestamp{Time: ts})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(context.Background(), feedReference(testAccount, testTopic, epoch), payload); err != nil {
		t.Fatal(err)
	}
}

func areEqualJSON(s1, s2 string) (bool, error) {
	var o1, o2 interface{}
	if err := json.Unmarshal([]byte(s1), &o1); err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s2), &o2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(o1, o2), nil
}
