package transport

import (
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	httperrors "github.com/nczempin/httpresume/errors"
	pkgerrors "github.com/pkg/errors"
)

// TcpTransport implements the Transport interface using TCP sockets
type TcpTransport struct {
	conn net.Conn
	opts Options
}

// NewTcpTransport creates a new TcpTransport instance
func NewTcpTransport(opts Options) *TcpTransport {
	return &TcpTransport{
		conn: nil,
		opts: opts,
	}
}

// Connect establishes a TCP connection to authority, defaulting to port 80
func (t *TcpTransport) Connect(authority string) error {
	addr := hostPort(authority)

	dialer := net.Dialer{Timeout: t.opts.DialTimeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		wrapped := pkgerrors.Wrapf(err, "dial %s", addr)
		// Classify network errors using type assertions
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			// Check for DNS resolution failures
			var dnsErr *net.DNSError
			if errors.As(opErr.Err, &dnsErr) && (dnsErr.IsNotFound || dnsErr.IsTemporary) {
				return httperrors.NewTransportError(httperrors.DnsFailure, wrapped)
			}
		}
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, wrapped)
	}

	// Set TCP_NODELAY to disable Nagle's algorithm for lower latency
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			conn.Close()
			return httperrors.NewTransportError(httperrors.InitFailure, pkgerrors.WithStack(err))
		}
	}

	t.conn = conn
	return nil
}

// Write sends data over the TCP connection
func (t *TcpTransport) Write(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, nil)
	}

	if t.opts.IOTimeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.opts.IOTimeout))
	}

	n, err := t.conn.Write(buf)
	if err != nil {
		// Check for broken pipe or connection reset
		if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
			return n, httperrors.NewTransportError(httperrors.ConnectionClosed, pkgerrors.WithStack(err))
		}
		return n, httperrors.NewTransportError(httperrors.SocketWriteFailure, pkgerrors.WithStack(err))
	}

	return n, nil
}

// Read receives data from the TCP connection
func (t *TcpTransport) Read(buf []byte) (int, error) {
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

// Close closes the TCP connection
func (t *TcpTransport) Close() error {
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
