// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/inconshreveable/log15"
)

const (
	defaultMempoolSize      = 100
	defaultMaxCallsPerBlock = 16
	defaultLogLevel         = "info"
)

var (
	errInvalidMempoolSize      = errors.New("mempool size must be positive")
	errInvalidMaxCallsPerBlock = errors.New("max calls per block must be positive")
)

// Config is the chain config of a countervm chain
type Config struct {
	MempoolSize      int    `json:"mempoolSize"`
	MaxCallsPerBlock int    `json:"maxCallsPerBlock"`
	LogLevel         string `json:"logLevel"`
}

// DefaultConfig returns the config used for fields left unset
func DefaultConfig() Config {
	return Config{
		MempoolSize:      defaultMempoolSize,
		MaxCallsPerBlock: defaultMaxCallsPerBlock,
		LogLevel:         defaultLogLevel,
	}
}

// ParseConfig parses JSON chain config bytes on top of DefaultConfig
func ParseConfig(configBytes []byte) (Config, error) {
	config := DefaultConfig()
	if len(configBytes) > 0 {
		if err := json.Unmarshal(configBytes, &config); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}
	return config, config.Verify()
}

// Verify returns an error if [c] cannot be used
func (c Config) Verify() error {
	switch {
	case c.MempoolSize <= 0:
		return errInvalidMempoolSize
	case c.MaxCallsPerBlock <= 0:
		return errInvalidMaxCallsPerBlock
	}
	_, err := c.Lvl()
	return err
}

// Lvl returns the configured log level
func (c Config) Lvl() (log.Lvl, error) {
	lvl, err := log.LvlFromString(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
