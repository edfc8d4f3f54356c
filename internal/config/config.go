// Package config loads optional shell tuning knobs (path-cache TTL,
// readline history limit) from a config file via viper, falling back to
// defaults when none is present; a file that fails to parse is an error.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the shell's tunable, non-spec-mandated knobs.
type Config struct {
	// PathCacheTTL bounds how long a PATH executable listing is reused
	// by completion. Command resolution always rescans PATH.
	PathCacheTTL time.Duration

	// HistoryLimit caps how many lines chzyer/readline keeps for
	// interactive Up/Down recall (separate from the shell's own history
	// log, which is unbounded).
	HistoryLimit int
}

// Default returns the configuration used when no config file is found or
// it fails to load.
func Default() Config {
	return Config{
		PathCacheTTL: time.Second,
		HistoryLimit: 1000,
	}
}

// Load reads shellcraft config from the first of ./shellcraft.yaml,
// $HOME/shellcraft.yaml, or /etc/shellcraft/shellcraft.yaml that exists,
// overlaying any set fields onto Default(). A missing config file is not
// an error; a present-but-unparsable one is.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("shellcraft")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	v.AddConfigPath("/etc/shellcraft")

	cfg := Default()
	v.SetDefault("path_cache_ttl", cfg.PathCacheTTL)
	v.SetDefault("history_limit", cfg.HistoryLimit)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return cfg, nil
		}
		return cfg, err
	}

	cfg.PathCacheTTL = v.GetDuration("path_cache_ttl")
	cfg.HistoryLimit = v.GetInt("history_limit")
	return cfg, nil
}
