// Package config loads httpresume settings from YAML, the environment and
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nczempin/httpresume/protocol"
	"github.com/nczempin/httpresume/transport"
	"gopkg.in/yaml.v3"
)

// DefaultURL is fetched when no URL is configured.
const DefaultURL = "http://127.0.0.1:8080"

// Config defines configuration for the httpresume CLI.
type Config struct {
	URL         string         `yaml:"url"`
	Output      string         `yaml:"output"`
	Bucket      string         `yaml:"bucket"`
	Object      string         `yaml:"object"`
	Transport   transport.Kind `yaml:"transport"`
	SocketPath  string         `yaml:"socket_path"`
	DialTimeout time.Duration  `yaml:"dial_timeout"`
	IOTimeout   time.Duration  `yaml:"io_timeout"`
	Verbose     bool           `yaml:"verbose"`
	Retry       RetryConfig    `yaml:"retry"`
}

// RetryConfig defines how truncated downloads are resumed.
type RetryConfig struct {
	// MaxAttempts of 0 resumes forever.
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		URL:       DefaultURL,
		Transport: transport.KindTcp,
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	URL         string          `yaml:"url"`
	Output      string          `yaml:"output"`
	Bucket      string          `yaml:"bucket"`
	Object      string          `yaml:"object"`
	Transport   string          `yaml:"transport"`
	SocketPath  string          `yaml:"socket_path"`
	DialTimeout string          `yaml:"dial_timeout"`
	IOTimeout   string          `yaml:"io_timeout"`
	Verbose     bool            `yaml:"verbose"`
	Retry       yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Delay       string `yaml:"delay"`
}

// LoadFromFile loads configuration from a YAML file on top of Default.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of Default.
func Parse(data []byte) (Config, error) {
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Object != "" {
		cfg.Object = yc.Object
	}
	if yc.Transport != "" {
		cfg.Transport = transport.Kind(yc.Transport)
	}
	if yc.SocketPath != "" {
		cfg.SocketPath = yc.SocketPath
	}
	cfg.Verbose = yc.Verbose

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"dial_timeout", yc.DialTimeout, &cfg.DialTimeout},
		{"io_timeout", yc.IOTimeout, &cfg.IOTimeout},
		{"retry.delay", yc.Retry.Delay, &cfg.Retry.Delay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = v
	}

	if yc.Retry.MaxAttempts != 0 {
		cfg.Retry.MaxAttempts = yc.Retry.MaxAttempts
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the HTTPRESUME_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("HTTPRESUME_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("HTTPRESUME_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("HTTPRESUME_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("HTTPRESUME_OBJECT"); v != "" {
		c.Object = v
	}
	if v := os.Getenv("HTTPRESUME_TRANSPORT"); v != "" {
		c.Transport = transport.Kind(v)
	}
	if v := os.Getenv("HTTPRESUME_SOCKET_PATH"); v != "" {
		c.SocketPath = v
	}
	if v := os.Getenv("HTTPRESUME_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HTTPRESUME_MAX_ATTEMPTS: %w", err)
		}
		c.Retry.MaxAttempts = n
	}
	if v := os.Getenv("HTTPRESUME_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse HTTPRESUME_RETRY_DELAY: %w", err)
		}
		c.Retry.Delay = d
	}
	if v := os.Getenv("HTTPRESUME_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse HTTPRESUME_VERBOSE: %w", err)
		}
		c.Verbose = b
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.URL, protocol.SchemePrefix) {
		return fmt.Errorf("url must start with %s", protocol.SchemePrefix)
	}
	if (c.Bucket == "") != (c.Object == "") {
		return errors.New("bucket and object must be set together")
	}
	if c.Bucket != "" && c.Output != "" {
		return errors.New("output cannot be combined with bucket")
	}
	switch c.Transport {
	case transport.KindTcp, transport.KindUnix, transport.KindUring, transport.KindUring2:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.SocketPath != "" && c.Transport != transport.KindUnix {
		return errors.New("socket_path requires the unix transport")
	}
	if (c.Transport == transport.KindUring || c.Transport == transport.KindUring2) && (c.DialTimeout != 0 || c.IOTimeout != 0) {
		return fmt.Errorf("transport %s does not support dial_timeout or io_timeout", c.Transport)
	}
	if c.Retry.MaxAttempts < 0 {
		return errors.New("retry.max_attempts must be >= 0")
	}
	if c.DialTimeout < 0 || c.IOTimeout < 0 || c.Retry.Delay < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// TransportOptions returns the socket options derived from c.
func (c *Config) TransportOptions() transport.Options {
	return transport.Options{
		DialTimeout: c.DialTimeout,
		IOTimeout:   c.IOTimeout,
		SocketPath:  c.SocketPath,
	}
}
