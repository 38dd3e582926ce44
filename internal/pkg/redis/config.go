package redis

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the Redis client configuration
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// DialTimeout is the timeout for establishing connections
	// Default: 5 seconds
	DialTimeout time.Duration `mapstructure:"dial_timeout"`

	// PoolSize is the maximum number of socket connections
	// Default: 10
	PoolSize int `mapstructure:"pool_size"`
}

// Addr returns the host:port address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("redis: host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("redis: invalid port")
	}
	return nil
}

// SetDefaults fills unspecified fields with defaults
func (c *Config) SetDefaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
}
