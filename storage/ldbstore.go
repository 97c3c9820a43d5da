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
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LDBStore keeps chunk data in a LevelDB database.
// Closing the LDBStore with Close method is required to
// release resources used by the database.
type LDBStore struct {
	db *leveldb.DB
}

// ExportedChunk is the structure that is saved in tar archive for
// each chunk as JSON-encoded bytes.
type ExportedChunk struct {
	Data []byte `json:"d"`
}

// NewLDBStore opens, or creates, the database at path.
func NewLDBStore(path string) (s *LDBStore, err error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open chunk database %s", path)
	}
	return &LDBStore{
		db: db,
	}, nil
}

// Close releases the resources used by the underlying LevelDB.
func (s *LDBStore) Close() error {
	return s.db.Close()
}

// Get returns chunk data for addr, or ErrChunkNotFound.
func (s *LDBStore) Get(ctx context.Context, addr Address) (data []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err = s.db.Get(dataDBKey(addr), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrChunkNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get chunk %s", addr.Log())
	}
	return data, nil
}

// Put saves the chunk data under addr, replacing any previous value.
func (s *LDBStore) Put(ctx context.Context, addr Address, data []byte) error {
	if len(addr) != AddressLength {
		return ErrInvalidAddress
	}
	return s.db.Put(dataDBKey(addr), data, nil)
}

// Has reports whether a chunk is stored under addr.
func (s *LDBStore) Has(ctx context.Context, addr Address) (bool, error) {
	return s.db.Has(dataDBKey(addr), nil)
}

// Import reads tar archive from a reader that contains exported chunk data.
// It returns the number of chunks imported and an error.
func (s *LDBStore) Import(r io.Reader) (n int, err error) {
	tr := tar.NewReader(r)

	for {
		hdr, err := tr.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return n, err
		}

		addr, err := ParseAddress(hdr.Name)
		if err != nil {
			return n, errors.Wrapf(err, "tar entry %q", hdr.Name)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return n, err
		}

		var c ExportedChunk
		if err = json.Unmarshal(data, &c); err != nil {
			return n, errors.Wrapf(err, "decode chunk %s", addr.Log())
		}

		if err = s.db.Put(dataDBKey(addr), c.Data, nil); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Export writes to a writer a tar archive with all chunk data from
// the store. It returns the number of chunks exported and an error.
func (s *LDBStore) Export(w io.Writer) (n int, err error) {
	tw := tar.NewWriter(w)
	defer tw.Close()

	buf := bytes.NewBuffer(make([]byte, 0, 1024))
	encoder := json.NewEncoder(buf)

	iter := s.db.NewIterator(util.BytesPrefix(dataKeyPrefix), nil)
	defer iter.Release()

	for iter.Next() {
		addr := Address(bytes.TrimPrefix(iter.Key(), dataKeyPrefix))

		buf.Reset()
		if err = encoder.Encode(ExportedChunk{
			Data: iter.Value(),
		}); err != nil {
			return n, err
		}

		d := buf.Bytes()
		hdr := &tar.Header{
			Name: addr.Hex(),
			Mode: 0644,
			Size: int64(len(d)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return n, err
		}
		if _, err := tw.Write(d); err != nil {
			return n, err
		}
		n++
	}
	return n, iter.Error()
}

var dataKeyPrefix = []byte("data-")

// dataDBkey constructs a database key for key/data storage.
func dataDBKey(addr Address) []byte {
	return append(append([]byte(nil), dataKeyPrefix...), addr...)
}
