package util

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ServerConfig contains server defaults loaded from a YAML file.
// Environment variables override the listen addresses and timeouts.
type ServerConfig struct {
	MaxPlayersPerRoom int    `yaml:"max-players-per-room"`
	StartingBalance   int64  `yaml:"starting-balance"`
	TurnTimeoutSec    uint32 `yaml:"turn-timeout-sec"`
	MinBet            int64  `yaml:"min-bet"`
}

// DefaultServerConfig is used when no config file is given.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		MaxPlayersPerRoom: 4,
		StartingBalance:   1000,
		TurnTimeoutSec:    uint32(Environment.GetTurnTimeout()),
		MinBet:            0,
	}
}

func ReadServerConfig(fileName string) (*ServerConfig, error) {
	bytes, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading config file [%s]", fileName)
	}

	config := DefaultServerConfig()
	err = yaml.Unmarshal(bytes, config)
	if err != nil {
		return nil, errors.Wrapf(err, "Error parsing YAML file [%s]", fileName)
	}

	if config.MaxPlayersPerRoom < 2 {
		return nil, errors.Errorf("max-players-per-room must be at least 2, got %d", config.MaxPlayersPerRoom)
	}
	// Five cards per player must fit in a single deck.
	if config.MaxPlayersPerRoom*5 > 52 {
		return nil, errors.Errorf("max-players-per-room %d too large for a 52-card deck", config.MaxPlayersPerRoom)
	}
	return config, nil
}
