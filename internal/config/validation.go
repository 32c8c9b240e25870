package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig performs validation on the complete configuration.
func ValidateConfig(config *Config) error {
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("invalid log_level %q (expected debug, info, warn or error)", config.LogLevel)
	}

	if err := config.Database.Validate(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := config.Protocol.Validate(); err != nil {
		return fmt.Errorf("protocol validation failed: %w", err)
	}

	return nil
}

// Validate checks the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size cannot be negative: %d", c.CacheSize)
	}
	return nil
}

// Validate checks the protocol configuration.
func (c *ProtocolConfig) Validate() error {
	if c.RentExemptForTokenAcc == 0 {
		return fmt.Errorf("rent_exempt_for_token_acc cannot be zero")
	}
	return nil
}
