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

package client

import (
	"context"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/etherna/go-epochfeed/api"
	"github.com/etherna/go-epochfeed/storage"
)

var (
	DefaultGateway = api.DefaultGateway
	DefaultClient  = NewClient(DefaultGateway)
)

func NewClient(gateway string) *Client {
	return &Client{
		Gateway: gateway,
	}
}

// Client wraps interaction with a chunk HTTP gateway.
type Client struct {
	Gateway string
}

// DownloadChunk downloads the chunk at addr. It returns
// storage.ErrChunkNotFound if the gateway doesn't have it.
func (c *Client) DownloadChunk(ctx context.Context, addr storage.Address) ([]byte, error) {
	uri := c.Gateway + "/chunks/" + addr.Hex()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "download chunk %s", addr.Log())
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, storage.ErrChunkNotFound
	default:
		return nil, errors.Errorf("download chunk %s: unexpected HTTP status: %s", addr.Log(), res.Status)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "download chunk %s", addr.Log())
	}
	log.Trace("Downloaded chunk", "ref", addr.Log(), "size", len(data))
	return data, nil
}

// Get implements storage.ChunkGetter.
func (c *Client) Get(ctx context.Context, addr storage.Address) ([]byte, error) {
	return c.DownloadChunk(ctx, addr)
}
