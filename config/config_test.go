package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nczempin/httpresume/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultURL, cfg.URL)
	assert.Equal(t, transport.KindTcp, cfg.Transport)
	assert.Zero(t, cfg.Retry.MaxAttempts)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: http://example.com/big.iso
output: big.iso
transport: unix
socket_path: /run/origin.sock
dial_timeout: 5s
io_timeout: 30s
verbose: true
retry:
  max_attempts: 10
  delay: 250ms
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/big.iso", cfg.URL)
	assert.Equal(t, "big.iso", cfg.Output)
	assert.Equal(t, transport.KindUnix, cfg.Transport)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.IOTimeout)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, "/run/origin.sock", cfg.SocketPath)
	assert.Equal(t, transport.Options{
		DialTimeout: 5 * time.Second,
		IOTimeout:   30 * time.Second,
		SocketPath:  "/run/origin.sock",
	}, cfg.TransportOptions())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("url: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("retry:\n  delay: soon\n"))
	assert.ErrorContains(t, err, "retry.delay")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTPRESUME_URL", "http://10.0.0.1:9000/x")
	t.Setenv("HTTPRESUME_BUCKET", "mem://")
	t.Setenv("HTTPRESUME_OBJECT", "x")
	t.Setenv("HTTPRESUME_MAX_ATTEMPTS", "3")
	t.Setenv("HTTPRESUME_RETRY_DELAY", "1s")
	t.Setenv("HTTPRESUME_VERBOSE", "true")
	t.Setenv("HTTPRESUME_TRANSPORT", "unix")
	t.Setenv("HTTPRESUME_SOCKET_PATH", "/tmp/origin.sock")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://10.0.0.1:9000/x", cfg.URL)
	assert.Equal(t, "mem://", cfg.Bucket)
	assert.Equal(t, "x", cfg.Object)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, transport.KindUnix, cfg.Transport)
	assert.Equal(t, "/tmp/origin.sock", cfg.TransportOptions().SocketPath)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("HTTPRESUME_MAX_ATTEMPTS", "many")
	cfg := Default()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	testcases := []struct {
		desc   string
		mutate func(*Config)
	}{
		{"https url", func(c *Config) { c.URL = "https://example.com" }},
		{"bucket without object", func(c *Config) { c.Bucket = "mem://" }},
		{"output with bucket", func(c *Config) { c.Bucket, c.Object, c.Output = "mem://", "o", "f" }},
		{"unknown transport", func(c *Config) { c.Transport = "quic" }},
		{"negative attempts", func(c *Config) { c.Retry.MaxAttempts = -1 }},
		{"negative delay", func(c *Config) { c.Retry.Delay = -time.Second }},
		{"socket path with tcp", func(c *Config) { c.SocketPath = "/tmp/s.sock" }},
		{"io timeout with uring", func(c *Config) { c.Transport, c.IOTimeout = transport.KindUring, time.Second }},
		{"dial timeout with uring2", func(c *Config) { c.Transport, c.DialTimeout = transport.KindUring2, time.Second }},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_TimeoutsPerTransport(t *testing.T) {
	for _, kind := range []transport.Kind{transport.KindTcp, transport.KindUnix} {
		cfg := Default()
		cfg.Transport = kind
		cfg.DialTimeout, cfg.IOTimeout = time.Second, time.Second
		assert.NoError(t, cfg.Validate(), kind)
	}

	for _, kind := range []transport.Kind{transport.KindUring, transport.KindUring2} {
		cfg := Default()
		cfg.Transport = kind
		assert.NoError(t, cfg.Validate(), kind)
	}
}
