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

import "errors"

var (
	// ErrChunkNotFound is returned by every ChunkGetter when the
	// requested chunk is not present.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrInvalidAddress is returned for references that are not 32 bytes.
	ErrInvalidAddress = errors.New("invalid chunk address")
)

// IsNotFound reports whether err signals a missing chunk.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChunkNotFound)
}
