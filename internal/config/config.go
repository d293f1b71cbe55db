package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	Pool            string
	PositionManager string
	PrivateKey      string
	Amount0         string
	Amount1         string
	WidthBps        uint64
	JournalPath     string
	PGDSN           string
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PROVISIONER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("width", uint64(100))
	v.SetDefault("journal", "./data/provisions.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		Pool:            v.GetString("pool"),
		PositionManager: v.GetString("position-manager"),
		PrivateKey:      v.GetString("private-key"),
		Amount0:         v.GetString("amount0"),
		Amount1:         v.GetString("amount1"),
		WidthBps:        v.GetUint64("width"),
		JournalPath:     v.GetString("journal"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}
