// SPDX-License-Identifier: EPL-2.0

// Package config holds the service configuration and its YAML loader.
package config

import "time"

// Log levels accepted by [LogConfig.Level].
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Log formats accepted by [LogConfig.Format].
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Audio  AudioConfig  `yaml:"audio"`
}

type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxUploadBytes caps the request body of an upload.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AudioConfig struct {
	// ContextSampleRate is the rate uploads are resampled to before
	// encoding. 0 keeps the native rate.
	ContextSampleRate int `yaml:"context_sample_rate"`
}

// Default returns the configuration used when no file is given. Loaded
// files are decoded on top of it, so omitted keys keep these values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  50 << 20,
		},
		Log: LogConfig{
			Level:  LevelInfo,
			Format: FormatJSON,
		},
		Audio: AudioConfig{
			ContextSampleRate: 44100,
		},
	}
}
