// Package config loads daemon configuration from defaults, a TOML file and
// environment variables, in that priority order.
package config

// Config is the complete daemon configuration.
type Config struct {
	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	Database DatabaseConfig `mapstructure:"database"`
	Protocol ProtocolConfig `mapstructure:"protocol"`

	configPath string
}

// DatabaseConfig configures the state store.
type DatabaseConfig struct {
	// Path is the pebble database directory.
	Path string `mapstructure:"path"`
	// CacheSize is the number of ledger entries held in the LRU cache.
	CacheSize int `mapstructure:"cache_size"`
}

// ProtocolConfig holds pool parameters applied when initializing state.
type ProtocolConfig struct {
	// RentExemptForTokenAcc is the lamport floor kept in the SOL leg.
	RentExemptForTokenAcc uint64 `mapstructure:"rent_exempt_for_token_acc"`
	// MinWithdraw is the minimum redemption value in lamports.
	MinWithdraw uint64 `mapstructure:"min_withdraw"`
}

// ConfigPath returns the path of the loaded configuration file, or empty if
// only defaults and environment were used.
func (c *Config) ConfigPath() string {
	return c.configPath
}
