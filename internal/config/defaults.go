package config

import "github.com/spf13/viper"

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	// Database defaults
	v.SetDefault("database.path", "/var/lib/marinaded/db")
	v.SetDefault("database.cache_size", 16384)

	// Protocol defaults. The rent floor matches the lamport balance a
	// token-sized system account must retain; min_withdraw guards against
	// dust redemptions.
	v.SetDefault("protocol.rent_exempt_for_token_acc", 2_039_280)
	v.SetDefault("protocol.min_withdraw", 10)
}
