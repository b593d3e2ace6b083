// Package config loads the deployment-static configuration from the
// environment, with command-line flags taking precedence.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the environment-level configuration: the issuer's signing
// key, the application identity embedded in scan requests, the freshness
// windows and the backing services.
type Config struct {
	ListenAddr    string        `mapstructure:"listen_addr"`
	RedisURL      string        `mapstructure:"redis_url"`
	DatabasePath  string        `mapstructure:"database_path"`
	SessionSecret string        `mapstructure:"session_secret"`
	SigningKeyHex string        `mapstructure:"signing_key"`
	AppID         string        `mapstructure:"app_id"`
	AppDID        string        `mapstructure:"app_did"`
	AppName       string        `mapstructure:"app_name"`
	AppDesc       string        `mapstructure:"app_description"`
	CallbackURL   string        `mapstructure:"callback_url"`
	RequestInfo   []string      `mapstructure:"request_info"`
	VerifyWindow  time.Duration `mapstructure:"verify_window"`
	PollWindow    time.Duration `mapstructure:"poll_window"`
	PurgeWindow   time.Duration `mapstructure:"purge_window"`
}

// flagBindings maps viper keys to the command-line flags that override them.
var flagBindings = map[string]string{
	"listen_addr":   "listen-addr",
	"redis_url":     "redis-url",
	"database_path": "database-path",
	"callback_url":  "callback-url",
	"app_id":        "app-id",
	"app_name":      "app-name",
}

// BindFlags registers the command-line flags that can override the
// TALARIA_* environment variables.
func BindFlags(flags *pflag.FlagSet) {
	flags.String("listen-addr", "", "address the HTTP server listens on")
	flags.String("redis-url", "", "redis connection URL")
	flags.String("database-path", "", "path of the sqlite account database")
	flags.String("callback-url", "", "callback URL embedded in scan requests")
	flags.String("app-id", "", "application identity signed into scan requests")
	flags.String("app-name", "", "application display name shown by the wallet")
}

// Load reads configuration from TALARIA_* environment variables, applying
// defaults suitable for local development. Flags registered via BindFlags
// override the environment when set.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TALARIA")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":9000")
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("database_path", "talaria.db")
	v.SetDefault("session_secret", "")
	v.SetDefault("signing_key", "")
	v.SetDefault("app_id", "talaria-demo")
	v.SetDefault("app_did", "did:talaria:issuer")
	v.SetDefault("app_name", "Talaria")
	v.SetDefault("app_description", "Sign in with your identity wallet")
	v.SetDefault("callback_url", "http://localhost:9000/auth/callback")
	v.SetDefault("request_info", []string{"nickname", "email"})
	v.SetDefault("verify_window", time.Minute)
	v.SetDefault("poll_window", time.Minute)
	v.SetDefault("purge_window", 2*time.Minute)

	if flags != nil {
		for key, name := range flagBindings {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			// Only a flag the user actually set may shadow the environment
			if flag.Changed {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &cfg, nil
}
