// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config carries everything main needs to wire the bot and the ops listener.
type Config struct {
	Token     string // Telegram bot token
	GroupID   int64  // chat the bot forwards recorded call results to
	WebappURL string // dashboard base URL; empty disables sync
	HTTPAddr  string // ops listener bind address
	Debug     bool
}

// FromEnv reads configuration, failing fast on anything required.
func FromEnv() (Config, error) {
	cfg := Config{
		WebappURL: os.Getenv("WEBAPP_API_URL"),
		HTTPAddr:  os.Getenv("HTTP_ADDR"),
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.Token == "" {
		return Config{}, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	raw := os.Getenv("TELEGRAM_GROUP_ID")
	if raw == "" {
		return Config{}, errors.New("TELEGRAM_GROUP_ID is not set")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("TELEGRAM_GROUP_ID must be a numeric chat id: %w", err)
	}
	cfg.GroupID = id

	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("DEBUG must be a boolean: %w", err)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}
