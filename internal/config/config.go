// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	PollInterval     time.Duration
	LogLevel         string
	LogFormat        string
	AllowedUsers     []int64
	H2SUsername      string
	H2SPassword      string
	NgrokTunnelName  string
}

// Load reads configuration from a .env file, if present, and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	interval := 15 * time.Second
	if raw := os.Getenv("POLL_INTERVAL_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 {
			return nil, fmt.Errorf("POLL_INTERVAL_SECONDS must be a positive integer, got %q", raw)
		}
		interval = time.Duration(secs) * time.Second
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "color"
	}

	var allowedUsers []int64
	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			allowedUsers = append(allowedUsers, uid)
		}
	}

	username := os.Getenv("H2S_USERNAME")
	password := os.Getenv("H2S_PASSWORD")
	if (username == "") != (password == "") {
		return nil, fmt.Errorf("H2S_USERNAME and H2S_PASSWORD must be set together")
	}

	return &Config{
		TelegramBotToken: token,
		PollInterval:     interval,
		LogLevel:         logLevel,
		LogFormat:        logFormat,
		AllowedUsers:     allowedUsers,
		H2SUsername:      username,
		H2SPassword:      password,
		NgrokTunnelName:  os.Getenv("NGROK_TUNNEL_NAME"),
	}, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
