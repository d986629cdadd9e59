package transport

import (
	"net"
	"strings"
	"time"
)

// DefaultPort is dialed when an authority names no port.
const DefaultPort = "80"

// Transport defines the interface for network I/O operations.
// Implementations include TCP, Unix domain sockets and io_uring backed TCP.
type Transport interface {
	// Connect establishes a connection to authority ("host[:port]").
	// For Unix sockets, the authority is the socket path.
	Connect(authority string) error

	// Write sends data to the connected peer.
	// Returns the number of bytes written or an error.
	Write(buf []byte) (int, error)

	// Read receives data from the connected peer.
	// A peer that closed cleanly yields an error wrapping io.EOF.
	Read(buf []byte) (int, error)

	// Close closes the connection.
	Close() error
}

// Options tunes the socket-level behavior of a transport.
type Options struct {
	// DialTimeout bounds Connect. Zero means no limit.
	DialTimeout time.Duration

	// IOTimeout bounds every single Read or Write. Zero means no limit.
	// The io_uring transports do not support it.
	IOTimeout time.Duration

	// SocketPath is the Unix socket UnixTransport dials. When empty the
	// authority is used as the path.
	SocketPath string
}

// hostPort returns authority with DefaultPort added when it has none.
func hostPort(authority string) string {
	if _, _, err := net.SplitHostPort(authority); err == nil {
		return authority
	}
	host := strings.TrimSuffix(strings.TrimPrefix(authority, "["), "]")
	return net.JoinHostPort(host, DefaultPort)
}
