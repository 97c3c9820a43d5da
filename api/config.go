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

package api

import (
	"time"
)

const (
	DefaultGateway         = "http://localhost:1633"
	DefaultCacheCapacity   = 5000
	DefaultRetrieveTimeout = 30 * time.Second
	DefaultVerbosity       = 3
)

// Config holds the settings of a feed client.
type Config struct {
	// Gateway is the HTTP endpoint chunks are downloaded from.
	// Leave empty to work on the local store only.
	Gateway string
	// StorePath is the LevelDB directory of the local chunk store.
	// Leave empty to keep chunks in memory.
	StorePath       string
	CacheCapacity   uint
	RetrieveTimeout time.Duration
	Verbosity       int

	// default feed coordinates
	Account string
	Topic   string
}

//create a default config with all parameters to set to defaults
func NewConfig() (c *Config) {
	c = &Config{
		Gateway:         DefaultGateway,
		CacheCapacity:   DefaultCacheCapacity,
		RetrieveTimeout: DefaultRetrieveTimeout,
		Verbosity:       DefaultVerbosity,
	}
	return
}
