package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostPort(t *testing.T) {
	testcases := []struct {
		authority string
		expected  string
	}{
		{authority: "127.0.0.1:8080", expected: "127.0.0.1:8080"},
		{authority: "example.com", expected: "example.com:80"},
		{authority: "[::1]:9000", expected: "[::1]:9000"},
		{authority: "[::1]", expected: "[::1]:80"},
	}

	for _, tc := range testcases {
		t.Run(tc.authority, func(t *testing.T) {
			assert.Equal(t, tc.expected, hostPort(tc.authority))
		})
	}
}

func TestNewFactory(t *testing.T) {
	f, err := NewFactory(KindTcp, Options{})
	require.NoError(t, err)
	tr, err := f()
	require.NoError(t, err)
	assert.IsType(t, &TcpTransport{}, tr)

	f, err = NewFactory("", Options{})
	require.NoError(t, err)
	tr, err = f()
	require.NoError(t, err)
	assert.IsType(t, &TcpTransport{}, tr)

	f, err = NewFactory(KindUnix, Options{})
	require.NoError(t, err)
	tr, err = f()
	require.NoError(t, err)
	assert.IsType(t, &UnixTransport{}, tr)

	_, err = NewFactory("carrier-pigeon", Options{})
	assert.Error(t, err)
}
