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
	"bytes"
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"github.com/etherna/go-epochfeed/storage"
	"github.com/etherna/go-epochfeed/storage/feed/lookup"
)

const (
	AccountBytesLength         = common.AddressLength
	IdentifierBytesLength      = 32
	IndexBytesLength           = 32
	MaxPayloadBytesSize        = 4096
	TimeStampByteSize          = 8
	TopicBytesLength           = 32
	MaxContentPayloadBytesSize = MaxPayloadBytesSize - TimeStampByteSize
)

var hashPool = sync.Pool{
	New: func() interface{} {
		return sha3.NewLegacyKeccak256()
	},
}

func keccak256(data ...[]byte) []byte {
	hasher := hashPool.Get().(hash.Hash)
	defer hashPool.Put(hasher)
	hasher.Reset()
	for _, b := range data {
		hasher.Write(b)
	}
	return hasher.Sum(nil)
}

// Chunk is a single feed update as found on the store: the epoch it was
// published at, its timestamped payload and its address.
// A Chunk is immutable.
type Chunk struct {
	index   lookup.EpochIndex
	payload []byte
	address storage.Address
}

// NewChunk validates payload and address and returns the feed chunk
// published at index.
func NewChunk(index lookup.EpochIndex, payload []byte, address storage.Address) (*Chunk, error) {
	if len(payload) < TimeStampByteSize || len(payload) > MaxPayloadBytesSize {
		return nil, NewErrorf(ErrInvalidValue, "payload size %d is out of range [%d, %d]", len(payload), TimeStampByteSize, MaxPayloadBytesSize)
	}
	if len(address) != storage.AddressLength {
		return nil, NewErrorf(ErrInvalidValue, "reference must be %d bytes, got %d", storage.AddressLength, len(address))
	}
	return &Chunk{
		index:   index,
		payload: common.CopyBytes(payload),
		address: common.CopyBytes(address),
	}, nil
}

// Index returns the epoch the chunk was published at.
func (c *Chunk) Index() lookup.EpochIndex {
	return c.index
}

// Payload returns a copy of the raw payload, timestamp header included.
func (c *Chunk) Payload() []byte {
	return common.CopyBytes(c.payload)
}

// Address returns a copy of the chunk address.
func (c *Chunk) Address() storage.Address {
	return common.CopyBytes(c.address)
}

// Reference returns the chunk address as 64 lowercase hex digits.
func (c *Chunk) Reference() string {
	return c.address.Hex()
}

// ContentPayload returns a copy of the payload past the timestamp header.
func (c *Chunk) ContentPayload() []byte {
	return common.CopyBytes(c.payload[TimeStampByteSize:])
}

// Timestamp decodes the payload header.
func (c *Chunk) Timestamp() Timestamp {
	var ts Timestamp
	ts.binaryGet(c.payload[:TimeStampByteSize])
	return ts
}

// Equal reports whether both chunks have the same address, epoch and payload.
func (c *Chunk) Equal(other *Chunk) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.index == other.index &&
		bytes.Equal(c.address, other.address) &&
		bytes.Equal(c.payload, other.payload)
}

func (c *Chunk) String() string {
	return "feed chunk " + c.index.String() + " " + c.address.Log()
}

// BuildChunkPayload prefixes content with the little endian encoding of ts.
func BuildChunkPayload(content []byte, ts Timestamp) ([]byte, error) {
	if len(content) > MaxContentPayloadBytesSize {
		return nil, NewErrorf(ErrInvalidValue, "content size %d exceeds %d bytes", len(content), MaxContentPayloadBytesSize)
	}
	payload := make([]byte, TimeStampByteSize+len(content))
	ts.binaryPut(payload[:TimeStampByteSize])
	copy(payload[TimeStampByteSize:], content)
	return payload, nil
}

// NewChunkPayload builds a payload stamped with the current time of
// TimestampProvider.
func NewChunkPayload(content []byte) ([]byte, error) {
	return BuildChunkPayload(content, TimestampProvider.Now())
}

// ParseAccount decodes a 0x prefixed, 40 hex digit account address.
func ParseAccount(account string) (common.Address, error) {
	if len(account) != 2+2*AccountBytesLength {
		return common.Address{}, NewErrorf(ErrInvalidValue, "invalid account %q", account)
	}
	b, err := hexutil.Decode(account)
	if err != nil || len(b) != AccountBytesLength {
		return common.Address{}, NewErrorf(ErrInvalidValue, "invalid account %q", account)
	}
	return common.BytesToAddress(b), nil
}

// BuildIdentifier derives the single owner chunk identifier of the update
// at index: H(topic|epochID).
func BuildIdentifier(topic []byte, index lookup.EpochIndex) ([]byte, error) {
	if len(topic) != TopicBytesLength {
		return nil, NewErrorf(ErrInvalidValue, "topic must be %d bytes, got %d", TopicBytesLength, len(topic))
	}
	id, _ := index.MarshalBinary()
	return keccak256(topic, id), nil
}

// BuildReferenceHash derives the chunk address owned by account for the
// given identifier: H(identifier|account).
func BuildReferenceHash(account string, identifier []byte) (storage.Address, error) {
	addr, err := ParseAccount(account)
	if err != nil {
		return nil, err
	}
	if len(identifier) != IdentifierBytesLength {
		return nil, NewErrorf(ErrInvalidValue, "identifier must be %d bytes, got %d", IdentifierBytesLength, len(identifier))
	}
	return referenceHash(addr, identifier), nil
}

// BuildFeedReferenceHash derives the address of the update published by
// account on topic at index.
func BuildFeedReferenceHash(account string, topic []byte, index lookup.EpochIndex) (storage.Address, error) {
	identifier, err := BuildIdentifier(topic, index)
	if err != nil {
		return nil, err
	}
	return BuildReferenceHash(account, identifier)
}

func referenceHash(account common.Address, identifier []byte) storage.Address {
	return keccak256(identifier, account[:])
}

func feedReference(account common.Address, topic Topic, index lookup.EpochIndex) storage.Address {
	id, _ := index.MarshalBinary()
	return referenceHash(account, keccak256(topic[:], id))
}
