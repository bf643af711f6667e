// Package config loads the engine's deployment settings: where the table
// and index files live, how many frames the buffer pool gets and which
// eviction strategy it runs, and the B+ tree fanout new indexes are
// created with.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/arcdb/arcdb/internal/bufferpool"
)

// Config is the engine's deployment configuration, unmarshalled from a
// YAML file.
type Config struct {
	Storage struct {
		TableFile string `mapstructure:"table_file"`
		IndexFile string `mapstructure:"index_file"`
	} `mapstructure:"storage"`
	BufferPool struct {
		Frames   int    `mapstructure:"frames"`
		Strategy string `mapstructure:"strategy"`
	} `mapstructure:"buffer_pool"`
	Index struct {
		Fanout int `mapstructure:"fanout"`
	} `mapstructure:"index"`
}

// Load reads and validates a YAML config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("buffer_pool.frames", 64)
	v.SetDefault("buffer_pool.strategy", "CLOCK")
	v.SetDefault("index.fanout", 64)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Storage.TableFile == "" {
		return fmt.Errorf("config: storage.table_file is required")
	}
	if c.Storage.IndexFile == "" {
		c.Storage.IndexFile = c.Storage.TableFile + ".idx"
	}
	if c.BufferPool.Frames <= 0 {
		return fmt.Errorf("config: buffer_pool.frames must be positive")
	}
	if _, err := c.BufferPoolStrategy(); err != nil {
		return err
	}
	if c.Index.Fanout < 3 {
		return fmt.Errorf("config: index.fanout must be at least 3")
	}
	return nil
}

// BufferPoolStrategy parses the configured strategy name into a
// bufferpool.Strategy.
func (c *Config) BufferPoolStrategy() (bufferpool.Strategy, error) {
	switch strings.ToUpper(c.BufferPool.Strategy) {
	case "FIFO":
		return bufferpool.FIFO, nil
	case "LRU":
		return bufferpool.LRU, nil
	case "CLOCK":
		return bufferpool.CLOCK, nil
	default:
		return 0, fmt.Errorf("config: unknown buffer_pool.strategy %q", c.BufferPool.Strategy)
	}
}
