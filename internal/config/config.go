package config

import (
	"os"
	"strings"
	"time"
)

// Config holds the bridge settings. Everything is environment-sourced with
// defaults matching a local Home Assistant install.
type Config struct {
	Username    string
	Password    string
	BaseURL     string
	CacheDir    string
	LogLevel    string
	CallTimeout time.Duration
}

// TokenClientName is the well-known label of the long-lived token the
// bridge owns on the hub.
const TokenClientName = "mcp"

// FromEnv builds the configuration from environment variables.
func FromEnv() *Config {
	return &Config{
		Username:    getenv("HOME_ASSISTANT_USERNAME", "admin"),
		Password:    getenv("HOME_ASSISTANT_PASSWORD", "admin123"),
		BaseURL:     strings.TrimSuffix(getenv("HOME_ASSISTANT_URL", "http://127.0.0.1:8123"), "/"),
		CacheDir:    getenv("HOME_ASSISTANT_CACHE_DIR", "./.cache"),
		LogLevel:    getenv("BRIDGE_LOG_LEVEL", "info"),
		CallTimeout: getDuration("BRIDGE_CALL_TIMEOUT", 30*time.Second),
	}
}

// WebsocketURL derives the hub's websocket endpoint from the base URL.
func (c *Config) WebsocketURL() string {
	switch {
	case strings.HasPrefix(c.BaseURL, "https://"):
		return strings.Replace(c.BaseURL, "https://", "wss://", 1) + "/api/websocket"
	case strings.HasPrefix(c.BaseURL, "http://"):
		return strings.Replace(c.BaseURL, "http://", "ws://", 1) + "/api/websocket"
	}
	return c.BaseURL + "/api/websocket"
}

// SSEURL is the hub's tool-calling endpoint.
func (c *Config) SSEURL() string {
	return c.BaseURL + "/mcp_server/sse"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
