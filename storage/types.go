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
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte length of a chunk reference.
const AddressLength = 32

// Address is the content address of a chunk.
type Address []byte

// ParseAddress decodes a 64 character hexadecimal reference. The input is
// case-insensitive and may carry a 0x prefix.
func ParseAddress(s string) (Address, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != 2*AddressLength {
		return nil, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidAddress, 2*AddressLength, len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return Address(b), nil
}

// Hex returns the lowercase hexadecimal form of the address, without prefix.
func (a Address) Hex() string {
	return fmt.Sprintf("%064x", []byte(a[:]))
}

// Log returns a shortened form of the address for log lines.
func (a Address) Log() string {
	if len(a[:]) < 8 {
		return fmt.Sprintf("%x", []byte(a[:]))
	}
	return fmt.Sprintf("%016x", []byte(a[:8]))
}

func (a Address) String() string {
	return a.Hex()
}
