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

/*
Package lookup defines the time index used to place and find feed updates.

Unix time is the leaf row of a perfect binary tree of MaxLevel+1 levels.
An epoch is a node (start, level) of that tree and spans the half-open
interval [start, start+2^level) seconds. The root epoch (0, MaxLevel) has a
right sibling (2^MaxLevel, MaxLevel), so the tree covers the times
[0, 2^(MaxLevel+1)).

A feed publishes at most one update per epoch. A writer puts its first
update on the root epoch and every following one on the epoch returned by
Next, one level below whichever epoch spans both the previous update and
the new time. A reader can therefore find the last update before a given
date by walking up and down the tree, without knowing how many updates
exist.
*/
package lookup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// MaxLevel is the level of the root epoch.
	MaxLevel = 32
	// MaxStart is the highest epoch start time.
	MaxStart = uint64(1)<<(MaxLevel+1) - 1
)

// ErrInvalidArgument is wrapped by every error returned from this package.
var ErrInvalidArgument = errors.New("invalid argument")

// EpochIndex is one node of the time tree. It is a value type; navigation
// methods always return new epochs.
type EpochIndex struct {
	start uint64
	level uint8
}

// NewEpochIndex returns the epoch at level that contains start. The low
// level bits of start are cleared.
func NewEpochIndex(start uint64, level uint8) (EpochIndex, error) {
	if start > MaxStart {
		return EpochIndex{}, fmt.Errorf("%w: start %d exceeds %d", ErrInvalidArgument, start, MaxStart)
	}
	if level > MaxLevel {
		return EpochIndex{}, fmt.Errorf("%w: level %d exceeds %d", ErrInvalidArgument, level, MaxLevel)
	}
	return EpochIndex{
		start: start &^ (uint64(1)<<level - 1),
		level: level,
	}, nil
}

// Root returns the root epoch of the tree.
func Root() EpochIndex {
	return EpochIndex{start: 0, level: MaxLevel}
}

// Start returns the first second covered by the epoch.
func (e EpochIndex) Start() uint64 {
	return e.start
}

// Level returns the epoch level, 0 being one second wide.
func (e EpochIndex) Level() uint8 {
	return e.level
}

// Length returns the number of seconds covered by the epoch.
func (e EpochIndex) Length() uint64 {
	return uint64(1) << e.level
}

// End returns the first second after the epoch.
func (e EpochIndex) End() uint64 {
	return e.start + e.Length()
}

// ContainsTime reports whether at falls within the epoch.
func (e EpochIndex) ContainsTime(at uint64) bool {
	return at >= e.start && at < e.End()
}

// IsLeft reports whether the epoch is the left child of its parent.
func (e EpochIndex) IsLeft() bool {
	return e.start&e.Length() == 0
}

// Left returns the left epoch of the sibling pair e belongs to.
func (e EpochIndex) Left() EpochIndex {
	if e.IsLeft() {
		return e
	}
	return EpochIndex{start: e.start - e.Length(), level: e.level}
}

// Right returns the right epoch of the sibling pair e belongs to.
func (e EpochIndex) Right() EpochIndex {
	if !e.IsLeft() {
		return e
	}
	return EpochIndex{start: e.start + e.Length(), level: e.level}
}

// ChildAt returns the child epoch containing at.
func (e EpochIndex) ChildAt(at uint64) (EpochIndex, error) {
	if e.level == 0 {
		return EpochIndex{}, fmt.Errorf("%w: epoch %v has no children", ErrInvalidArgument, e)
	}
	if !e.ContainsTime(at) {
		return EpochIndex{}, fmt.Errorf("%w: time %d out of range of epoch %v", ErrInvalidArgument, at, e)
	}
	child := EpochIndex{start: e.start, level: e.level - 1}
	if (at-e.start)&child.Length() != 0 {
		child.start |= child.Length()
	}
	return child, nil
}

// Next returns the epoch on which an update made at time at should be
// published when e holds the previous update. It descends a single level
// from e, if at still falls within e, or from the lowest common ancestor of
// e and at otherwise.
func (e EpochIndex) Next(at uint64) (EpochIndex, error) {
	if at < e.start {
		return EpochIndex{}, fmt.Errorf("%w: time %d precedes epoch %v", ErrInvalidArgument, at, e)
	}
	if e.ContainsTime(at) {
		return e.ChildAt(at)
	}
	lca, err := LowestCommonAncestor(e.start, at)
	if err != nil {
		return EpochIndex{}, err
	}
	return lca.ChildAt(at)
}

// Parent returns the epoch one level up that contains e.
func (e EpochIndex) Parent() (EpochIndex, error) {
	if e.level == MaxLevel {
		return EpochIndex{}, fmt.Errorf("%w: epoch %v is a root and has no parent", ErrInvalidArgument, e)
	}
	level := e.level + 1
	return EpochIndex{start: e.start &^ (uint64(1)<<level - 1), level: level}, nil
}

// LowestCommonAncestor returns the lowest epoch containing both t0 and t1.
func LowestCommonAncestor(t0, t1 uint64) (EpochIndex, error) {
	var level uint8
	for t0>>level != t1>>level {
		level++
		if level > MaxLevel {
			return EpochIndex{}, fmt.Errorf("%w: times %d and %d are too far apart", ErrInvalidArgument, t0, t1)
		}
	}
	return EpochIndex{start: t0 &^ (uint64(1)<<level - 1), level: level}, nil
}

// MarshalBinary returns the binary identity of the epoch,
// keccak256(start as 8 byte big endian | level).
func (e EpochIndex) MarshalBinary() ([]byte, error) {
	epochBytes := make([]byte, 9)
	binary.BigEndian.PutUint64(epochBytes, e.start)
	epochBytes[8] = e.level
	return crypto.Keccak256(epochBytes), nil
}

// String returns the "start/level" form of the epoch.
func (e EpochIndex) String() string {
	return fmt.Sprintf("%d/%d", e.start, e.level)
}

// ParseEpochIndex parses the form produced by String.
func ParseEpochIndex(s string) (EpochIndex, error) {
	startStr, levelStr, ok := strings.Cut(s, "/")
	if !ok {
		return EpochIndex{}, fmt.Errorf("%w: epoch %q is not in start/level form", ErrInvalidArgument, s)
	}
	start, err := strconv.ParseUint(startStr, 10, 64)
	if err != nil {
		return EpochIndex{}, fmt.Errorf("%w: epoch start %q: %v", ErrInvalidArgument, startStr, err)
	}
	level, err := strconv.ParseUint(levelStr, 10, 8)
	if err != nil {
		return EpochIndex{}, fmt.Errorf("%w: epoch level %q: %v", ErrInvalidArgument, levelStr, err)
	}
	return NewEpochIndex(start, uint8(level))
}
