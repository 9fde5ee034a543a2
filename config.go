package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"
)

type Config struct {
	Port          int            `toml:"port"`
	LogLevel      string         `toml:"log_level"`
	SessionSecret string         `toml:"session_secret"`
	APITokenHash  string         `toml:"api_token_hash"`
	Database      DatabaseConfig `toml:"database"`
	Telegram      TelegramConfig `toml:"telegram"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type TelegramConfig struct {
	Token   string  `toml:"token"`
	ChatIDs []int64 `toml:"chat_ids"`
	APIURL  string  `toml:"api_url"`
}

func defaultConfig() *Config {
	return &Config{
		Port:     8080,
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "tracksite.db",
		},
	}
}

// loadConfig builds the configuration from the optional TOML file named by
// --config, then overrides it with every flag set on the command line or
// through the environment.
func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := defaultConfig()

	if path := ctx.String("config"); path != "" {
		_, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if ctx.IsSet("port") {
		cfg.Port = ctx.Int("port")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("session-secret") {
		cfg.SessionSecret = ctx.String("session-secret")
	}
	if ctx.IsSet("api-token-hash") {
		cfg.APITokenHash = ctx.String("api-token-hash")
	}
	if ctx.IsSet("database-driver") {
		cfg.Database.Driver = ctx.String("database-driver")
	}
	if ctx.IsSet("database-dsn") {
		cfg.Database.DSN = ctx.String("database-dsn")
	}
	if ctx.IsSet("telegram-token") {
		cfg.Telegram.Token = ctx.String("telegram-token")
	}
	if ctx.IsSet("telegram-chat-id") {
		cfg.Telegram.ChatIDs = ctx.Int64Slice("telegram-chat-id")
	}
	if ctx.IsSet("telegram-api-url") {
		cfg.Telegram.APIURL = ctx.String("telegram-api-url")
	}

	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// configFrom returns the configuration loaded before any command ran.
func configFrom(ctx *cli.Context) *Config {
	if cfg, ok := ctx.App.Metadata["config"].(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
