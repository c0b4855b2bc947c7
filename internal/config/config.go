package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	APIToken   string `mapstructure:"api_token"`
	LogLevel   string `mapstructure:"log_level"`

	// DatabaseURL selects the Postgres store; empty means in-memory.
	DatabaseURL string `mapstructure:"database_url"`

	// TaxTableFile optionally overlays bracket/relief/index tables.
	TaxTableFile string `mapstructure:"tax_table_file"`

	DevSeed bool `mapstructure:"dev_seed"`
}

// Load reads configuration from an optional taxfolio.yml and TAXFOLIO_*
// environment variables; environment wins over file, file over defaults.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("taxfolio")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/taxfolio")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TAXFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("api_token", "dev-token")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "")
	v.SetDefault("tax_table_file", "")
	v.SetDefault("dev_seed", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		// No config file found: defaults plus environment apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
