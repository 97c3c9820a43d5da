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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"time"
	"unicode"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/etherna/go-epochfeed/api"
)

var (
	//flag definition for the dumpconfig command
	dumpConfigCommand = &cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}
)

//constants for environment variables
const (
	EPOCHFEED_ENV_GATEWAY          = "EPOCHFEED_GATEWAY"
	EPOCHFEED_ENV_STORE_PATH       = "EPOCHFEED_STORE_PATH"
	EPOCHFEED_ENV_CACHE_CAPACITY   = "EPOCHFEED_CACHE_CAPACITY"
	EPOCHFEED_ENV_RETRIEVE_TIMEOUT = "EPOCHFEED_RETRIEVE_TIMEOUT"
	EPOCHFEED_ENV_VERBOSITY        = "EPOCHFEED_VERBOSITY"
	EPOCHFEED_ENV_ACCOUNT          = "EPOCHFEED_ACCOUNT"
	EPOCHFEED_ENV_TOPIC            = "EPOCHFEED_TOPIC"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = ", check github.com/etherna/go-epochfeed/api/config.go for available fields"
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

//build the configuration: defaults, then config file, environment and command line
func buildConfig(ctx *cli.Context) (config *api.Config, err error) {
	//start by creating a default config
	config = api.NewConfig()
	//first load settings from config file (if provided)
	config, err = configFileOverride(config, ctx)
	if err != nil {
		return nil, err
	}
	//override settings provided by environment variables
	config, err = envVarsOverride(config)
	if err != nil {
		return nil, err
	}
	//override settings provided by command line
	config = cmdLineOverride(config, ctx)
	//validate configuration parameters
	err = validateConfig(config)
	return
}

//configFileOverride overrides the current config with the config file, if a config file has been provided
func configFileOverride(config *api.Config, ctx *cli.Context) (*api.Config, error) {
	//only do something if the -config flag has been set
	if !ctx.IsSet(configFileFlag.Name) {
		return config, nil
	}
	filepath := ctx.String(configFileFlag.Name)
	if filepath == "" {
		return nil, errors.New("config file flag provided with invalid file path")
	}
	f, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	//decode the TOML file into a Config struct
	//note that we are decoding into the existing defaultConfig;
	//if an entry is not present in the file, the default entry is kept
	err = tomlSettings.NewDecoder(f).Decode(config)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(filepath + ", " + err.Error())
	}
	return config, err
}

//override the current config with whatever is provided through the command line
//most values are not allowed a zero value (empty string), if not otherwise noted
func cmdLineOverride(currentConfig *api.Config, ctx *cli.Context) *api.Config {
	// an empty gateway disables remote retrieval
	if ctx.IsSet(gatewayFlag.Name) {
		currentConfig.Gateway = ctx.String(gatewayFlag.Name)
	}

	if storePath := ctx.String(storePathFlag.Name); storePath != "" {
		currentConfig.StorePath = storePath
	}

	if capacity := ctx.Uint(cacheCapacityFlag.Name); capacity != 0 {
		currentConfig.CacheCapacity = capacity
	}

	if d := ctx.Duration(retrieveTimeoutFlag.Name); d > 0 {
		currentConfig.RetrieveTimeout = d
	}

	// any value including 0 is acceptable
	if ctx.IsSet(verbosityFlag.Name) {
		currentConfig.Verbosity = ctx.Int(verbosityFlag.Name)
	}

	if account := ctx.String(accountFlag.Name); account != "" {
		currentConfig.Account = account
	}

	if topic := ctx.String(topicFlag.Name); topic != "" {
		currentConfig.Topic = topic
	}

	return currentConfig
}

//override the current config with whatever is provided in environment variables
//most values are not allowed a zero value (empty string), if not otherwise noted
func envVarsOverride(currentConfig *api.Config) (*api.Config, error) {
	if gateway, ok := os.LookupEnv(EPOCHFEED_ENV_GATEWAY); ok {
		currentConfig.Gateway = gateway
	}

	if storePath := os.Getenv(EPOCHFEED_ENV_STORE_PATH); storePath != "" {
		currentConfig.StorePath = storePath
	}

	if v := os.Getenv(EPOCHFEED_ENV_CACHE_CAPACITY); v != "" {
		capacity, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid environment variable %s: %v", EPOCHFEED_ENV_CACHE_CAPACITY, err)
		}
		if capacity != 0 {
			currentConfig.CacheCapacity = uint(capacity)
		}
	}

	if v := os.Getenv(EPOCHFEED_ENV_RETRIEVE_TIMEOUT); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid environment variable %s: %v", EPOCHFEED_ENV_RETRIEVE_TIMEOUT, err)
		}
		currentConfig.RetrieveTimeout = d
	}

	if v := os.Getenv(EPOCHFEED_ENV_VERBOSITY); v != "" {
		verbosity, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid environment variable %s: %v", EPOCHFEED_ENV_VERBOSITY, err)
		}
		currentConfig.Verbosity = verbosity
	}

	if account := os.Getenv(EPOCHFEED_ENV_ACCOUNT); account != "" {
		currentConfig.Account = account
	}

	if topic := os.Getenv(EPOCHFEED_ENV_TOPIC); topic != "" {
		currentConfig.Topic = topic
	}

	return currentConfig, nil
}

// dumpConfig is the dumpconfig command.
// writes the effective config to STDOUT
func dumpConfig(ctx *cli.Context) error {
	cfg, err := buildConfig(ctx)
	if err != nil {
		return fmt.Errorf("dumpconfig triggered an error: %v", err)
	}
	comment := ""
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	io.WriteString(ctx.App.Writer, comment)
	ctx.App.Writer.Write(out)
	return nil
}

//validate configuration parameters
func validateConfig(cfg *api.Config) error {
	if cfg.RetrieveTimeout <= 0 {
		return fmt.Errorf("invalid retrieve timeout %v", cfg.RetrieveTimeout)
	}
	if cfg.CacheCapacity == 0 {
		return errors.New("cache capacity must be positive")
	}
	return nil
}
