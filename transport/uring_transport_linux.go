//go:build linux

package transport

import (
	"io"
	"net"
	"syscall"

	"github.com/iceber/iouring-go"
	httperrors "github.com/nczempin/httpresume/errors"
	pkgerrors "github.com/pkg/errors"
)

// uringQueueDepth is the submission queue size of each ring.
const uringQueueDepth = 32

// UringTransport implements Transport over TCP using io_uring (iouring-go)
type UringTransport struct {
	iour   *iouring.IOURing
	fd     int
	closed bool
}

// NewUringTransport creates a new TCP transport with io_uring
func NewUringTransport() (*UringTransport, error) {
	iour, err := iouring.New(uringQueueDepth)
	if err != nil {
		return nil, httperrors.NewTransportError(
			httperrors.InitFailure,
			pkgerrors.Wrap(err, "failed to initialize io_uring"),
		)
	}

	return &UringTransport{
		iour:   iour,
		fd:     -1,
		closed: false,
	}, nil
}

// Connect establishes a TCP connection to authority using io_uring
func (t *UringTransport) Connect(authority string) error {
	if t.fd >= 0 {
		return httperrors.NewTransportError(
			httperrors.SocketConnectFailure,
			pkgerrors.New("already connected"),
		)
	}

	addr := hostPort(authority)
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return httperrors.NewTransportError(
			httperrors.DnsFailure,
			pkgerrors.Wrapf(err, "failed to resolve %s", addr),
		)
	}

	fd, sa, err := tcpSocket(tcpAddr)
	if err != nil {
		return err
	}

	prep, err := iouring.Connect(fd, sa)
	if err != nil {
		syscall.Close(fd)
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, pkgerrors.WithStack(err))
	}

	ch := make(chan iouring.Result, 1)
	if _, err := t.iour.SubmitRequest(prep, ch); err != nil {
		syscall.Close(fd)
		return httperrors.NewTransportError(
			httperrors.UringSubmitFailure,
			pkgerrors.Wrap(err, "failed to submit connect request"),
		)
	}

	// Connect completions carry no int value, only an error.
	result := <-ch
	if err := result.Err(); err != nil {
		syscall.Close(fd)
		return httperrors.NewTransportError(
			httperrors.SocketConnectFailure,
			pkgerrors.Wrapf(err, "failed to connect to %s", addr),
		)
	}

	t.fd = fd
	return nil
}

// Write sends all of buf using io_uring send operations
func (t *UringTransport) Write(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, pkgerrors.New("not connected"))
	}
	if t.closed {
		return 0, httperrors.NewTransportError(httperrors.ConnectionClosed, nil)
	}

	totalWritten := 0
	for totalWritten < len(buf) {
		ch := make(chan iouring.Result, 1)
		if _, err := t.iour.SubmitRequest(iouring.Send(t.fd, buf[totalWritten:], 0), ch); err != nil {
			return totalWritten, httperrors.NewTransportError(
				httperrors.UringSubmitFailure,
				pkgerrors.Wrap(err, "failed to submit write request"),
			)
		}

		result := <-ch
		n, err := result.ReturnInt()
		if err != nil {
			return totalWritten, httperrors.NewTransportError(httperrors.SocketWriteFailure, pkgerrors.WithStack(err))
		}
		if n <= 0 {
			return totalWritten, httperrors.NewTransportError(
				httperrors.ConnectionClosed,
				pkgerrors.New("connection closed during write"),
			)
		}

		totalWritten += n
	}

	return totalWritten, nil
}

// Read receives data using a single io_uring recv operation
func (t *UringTransport) Read(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, pkgerrors.New("not connected"))
	}
	if t.closed {
		return 0, httperrors.NewTransportError(httperrors.ConnectionClosed, nil)
	}

	ch := make(chan iouring.Result, 1)
	if _, err := t.iour.SubmitRequest(iouring.Recv(t.fd, buf, 0), ch); err != nil {
		return 0, httperrors.NewTransportError(
			httperrors.UringSubmitFailure,
			pkgerrors.Wrap(err, "failed to submit read request"),
		)
	}

	result := <-ch
	n, err := result.ReturnInt()
	if err != nil {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, pkgerrors.WithStack(err))
	}
	if n == 0 && len(buf) > 0 {
		return 0, httperrors.NewTransportError(httperrors.ConnectionClosed, io.EOF)
	}

	return n, nil
}

// Close closes the socket and releases the ring
func (t *UringTransport) Close() error {
	var err error
	if t.fd >= 0 && !t.closed {
		t.closed = true
		if cerr := syscall.Close(t.fd); cerr != nil {
			err = httperrors.NewTransportError(httperrors.SocketCloseFailure, cerr)
		}
		t.fd = -1
	}
	if t.iour != nil {
		t.iour.Close()
		t.iour = nil
	}
	return err
}

// tcpSocket creates a blocking TCP socket with TCP_NODELAY set and the
// matching sockaddr for addr.
func tcpSocket(addr *net.TCPAddr) (int, syscall.Sockaddr, error) {
	var sa syscall.Sockaddr
	family := syscall.AF_INET
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa4 := &syscall.SockaddrInet4{Port: addr.Port}
		copy(sa4.Addr[:], ip4)
		sa = sa4
	} else {
		family = syscall.AF_INET6
		sa6 := &syscall.SockaddrInet6{Port: addr.Port}
		copy(sa6.Addr[:], addr.IP)
		sa = sa6
	}

	fd, err := syscall.Socket(family, syscall.SOCK_STREAM, 0)
	if err != nil {
		return -1, nil, httperrors.NewTransportError(
			httperrors.SocketCreateFailure,
			pkgerrors.Wrap(err, "failed to create socket"),
		)
	}

	if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
		syscall.Close(fd)
		return -1, nil, httperrors.NewTransportError(
			httperrors.SocketCreateFailure,
			pkgerrors.Wrap(err, "failed to set TCP_NODELAY"),
		)
	}

	return fd, sa, nil
}
