package config

import "time"

// Config holds client configuration values.
type Config struct {
	// ServerURL is the base URL for the request/response endpoints.
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`
	// SocketURL is the persistent connection endpoint.
	SocketURL string `mapstructure:"socket_url" yaml:"socket_url"`
	// Room is the initial active room.
	Room string `mapstructure:"room" yaml:"room"`
	// Token is an optional session token attached to login requests.
	Token string `mapstructure:"token" yaml:"token"`

	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`
	LoginAckWarn time.Duration `mapstructure:"login_ack_warn" yaml:"login_ack_warn"`

	// StatusAddr enables the local status endpoint when non-empty.
	StatusAddr string `mapstructure:"status_addr" yaml:"status_addr"`
	// ArchivePath enables the local transcript archive when non-empty.
	ArchivePath string `mapstructure:"archive_path" yaml:"archive_path"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ServerURL:    "http://localhost:3030",
		SocketURL:    "ws://localhost:3030/ws",
		Room:         "blue",
		LogLevel:     "info",
		HTTPTimeout:  10 * time.Second,
		LoginAckWarn: 10 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.SocketURL != "" {
		c.SocketURL = other.SocketURL
	}
	if other.Room != "" {
		c.Room = other.Room
	}
	if other.Token != "" {
		c.Token = other.Token
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.HTTPTimeout != 0 {
		c.HTTPTimeout = other.HTTPTimeout
	}
	if other.LoginAckWarn != 0 {
		c.LoginAckWarn = other.LoginAckWarn
	}
	if other.StatusAddr != "" {
		c.StatusAddr = other.StatusAddr
	}
	if other.ArchivePath != "" {
		c.ArchivePath = other.ArchivePath
	}
}
