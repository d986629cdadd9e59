package transport

import (
	"errors"
	"io"
	"net"
	"strings"
	"time"

	httperrors "github.com/nczempin/httpresume/errors"
	pkgerrors "github.com/pkg/errors"
)

// UnixTransport implements the Transport interface using Unix domain sockets
type UnixTransport struct {
	conn net.Conn
	opts Options
}

// NewUnixTransport creates a new UnixTransport instance
func NewUnixTransport(opts Options) *UnixTransport {
	return &UnixTransport{
		conn: nil,
		opts: opts,
	}
}

// Connect establishes a Unix domain socket connection to Options.SocketPath,
// or to authority taken as a path when no SocketPath is set.
func (t *UnixTransport) Connect(authority string) error {
	path := t.opts.SocketPath
	if path == "" {
		path = authority
	}

	conn, err := net.DialTimeout("unix", path, t.opts.DialTimeout)
	if err != nil {
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, pkgerrors.Wrapf(err, "dial %s", path))
	}

	t.conn = conn
	return nil
}

// Write sends data over the Unix domain socket
func (t *UnixTransport) Write(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, nil)
	}

	if t.opts.IOTimeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.opts.IOTimeout))
	}

	n, err := t.conn.Write(buf)
	if err != nil {
		if strings.Contains(err.Error(), "broken pipe") ||
			strings.Contains(err.Error(), "connection reset") {
			return n, httperrors.NewTransportError(httperrors.ConnectionClosed, pkgerrors.WithStack(err))
		}
		return n, httperrors.NewTransportError(httperrors.SocketWriteFailure, pkgerrors.WithStack(err))
	}

	return n, nil
}

// Read receives data from the Unix domain socket
func (t *UnixTransport) Read(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, nil)
	}

	if t.opts.IOTimeout > 0 {
		t.conn.SetReadDeadline(time.Now().Add(t.opts.IOTimeout))
	}

	n, err := t.conn.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, httperrors.NewTransportError(httperrors.ConnectionClosed, io.EOF)
		}
		return n, httperrors.NewTransportError(httperrors.SocketReadFailure, pkgerrors.WithStack(err))
	}

	return n, nil
}

// Close closes the Unix domain socket connection
func (t *UnixTransport) Close() error {
	if t.conn == nil {
		return nil // Idempotent close
	}

	err := t.conn.Close()
	t.conn = nil

	if err != nil {
		return httperrors.NewTransportError(httperrors.SocketCloseFailure, err)
	}

	return nil
}
