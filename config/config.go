// Package config holds the adder node configuration.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/blockberries/adder/logging"
	"github.com/blockberries/adder/types"
)

// minArenaSize is the size of one encoded validation result: a two
// byte compact length and the head.
const minArenaSize = 2 + types.HeadSize

// Config is the node configuration. Memory layout fields describe the
// fixed memory the in-process validator runs with: the input region
// starts at InputOffset and the result arena follows it directly.
type Config struct {
	// Address the gRPC validation service listens on.
	Listen string `toml:"listen"`
	// Path of the head database.
	DBPath string `toml:"db_path"`

	MemorySize  uint32 `toml:"memory_size"`
	InputOffset uint32 `toml:"input_offset"`
	InputSize   uint32 `toml:"input_size"`
	ArenaSize   uint32 `toml:"arena_size"`

	// Counter value committed to by the genesis head.
	GenesisState uint64 `toml:"genesis_state"`

	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:26680",
		DBPath:       "data/heads.db",
		MemorySize:   128 << 10,
		InputOffset:  1 << 10,
		InputSize:    64 << 10,
		ArenaSize:    4 << 10,
		GenesisState: 0,
		LogLevel:     "INFO",
	}
}

// ArenaOffset returns the first address of the result arena.
func (cfg *Config) ArenaOffset() uint32 {
	return cfg.InputOffset + cfg.InputSize
}

// ValidateBasic performs basic validation of the config.
func (cfg *Config) ValidateBasic() error {
	if cfg.Listen == "" {
		return fmt.Errorf("listen address is empty")
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("db path is empty")
	}
	if cfg.InputSize == 0 {
		return fmt.Errorf("input region is empty")
	}
	if cfg.ArenaSize < minArenaSize {
		return fmt.Errorf("arena size %d is smaller than one result (%d bytes)", cfg.ArenaSize, minArenaSize)
	}
	end := uint64(cfg.InputOffset) + uint64(cfg.InputSize) + uint64(cfg.ArenaSize)
	if end > uint64(cfg.MemorySize) {
		return fmt.Errorf("input and arena regions end at %d, past memory size %d", end, cfg.MemorySize)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// Load reads a TOML file over the defaults and validates the result.
// Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
