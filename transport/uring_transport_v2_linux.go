//go:build linux

package transport

import (
	"io"
	"net"
	"os"
	"syscall"

	"github.com/godzie44/go-uring/uring"
	httperrors "github.com/nczempin/httpresume/errors"
	pkgerrors "github.com/pkg/errors"
)

// UringTransportV2 implements Transport over TCP using godzie44/go-uring.
// Connect is a blocking syscall; reads and writes go through the ring.
type UringTransportV2 struct {
	ring *uring.Ring
	fd   int
	file *os.File
}

// NewUringTransportV2 creates a new TCP transport with io_uring (go-uring)
func NewUringTransportV2() (*UringTransportV2, error) {
	ring, err := uring.New(uringQueueDepth)
	if err != nil {
		return nil, httperrors.NewTransportError(
			httperrors.InitFailure,
			pkgerrors.Wrap(err, "failed to initialize io_uring"),
		)
	}

	return &UringTransportV2{
		ring: ring,
		fd:   -1,
	}, nil
}

// Connect establishes a TCP connection to authority
func (t *UringTransportV2) Connect(authority string) error {
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

	if err := syscall.Connect(fd, sa); err != nil {
		syscall.Close(fd)
		return httperrors.NewTransportError(
			httperrors.SocketConnectFailure,
			pkgerrors.Wrapf(err, "failed to connect to %s", addr),
		)
	}

	t.fd = fd
	t.file = os.NewFile(uintptr(fd), "socket")
	return nil
}

// submit queues sqe, submits it and waits for its completion result
func (t *UringTransportV2) submit(sqe uring.Operation) (int, error) {
	if err := t.ring.QueueSQE(sqe, 0, 0); err != nil {
		return 0, httperrors.NewTransportError(
			httperrors.UringSubmitFailure,
			pkgerrors.Wrap(err, "failed to queue request"),
		)
	}

	if _, err := t.ring.Submit(); err != nil {
		return 0, httperrors.NewTransportError(
			httperrors.UringSubmitFailure,
			pkgerrors.Wrap(err, "failed to submit request"),
		)
	}

	cqe, err := t.ring.WaitCQEvents(1)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to wait for completion")
	}
	defer t.ring.SeenCQE(cqe)

	if err := cqe.Error(); err != nil {
		return 0, pkgerrors.WithStack(err)
	}
	return int(cqe.Res), nil
}

// Write sends all of buf through the ring
func (t *UringTransportV2) Write(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, pkgerrors.New("not connected"))
	}

	totalWritten := 0
	for totalWritten < len(buf) {
		n, err := t.submit(uring.Write(t.file.Fd(), buf[totalWritten:], 0))
		if err != nil {
			if _, ok := err.(*httperrors.Error); ok {
				return totalWritten, err
			}
			return totalWritten, httperrors.NewTransportError(httperrors.SocketWriteFailure, err)
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

// Read receives data with a single read operation
func (t *UringTransportV2) Read(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, pkgerrors.New("not connected"))
	}

	n, err := t.submit(uring.Read(t.file.Fd(), buf, 0))
	if err != nil {
		if _, ok := err.(*httperrors.Error); ok {
			return 0, err
		}
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, err)
	}
	if n == 0 && len(buf) > 0 {
		return 0, httperrors.NewTransportError(httperrors.ConnectionClosed, io.EOF)
	}

	return n, nil
}

// Close closes the socket and releases the ring
func (t *UringTransportV2) Close() error {
	if t.file != nil {
		t.file.Close()
		t.file = nil
	}
	t.fd = -1

	if t.ring != nil {
		t.ring.Close()
		t.ring = nil
	}

	return nil
}
