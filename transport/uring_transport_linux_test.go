//go:build linux

package transport

import (
	"io"
	"net"
	"testing"

	httperrors "github.com/nczempin/httpresume/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUringOrSkip(t *testing.T, v2 bool) Transport {
	t.Helper()

	var (
		tr  Transport
		err error
	)
	if v2 {
		var u *UringTransportV2
		u, err = NewUringTransportV2()
		if err == nil {
			tr = u
		}
	} else {
		var u *UringTransport
		u, err = NewUringTransport()
		if err == nil {
			tr = u
		}
	}
	if err != nil {
		t.Skipf("io_uring unavailable: %v", err)
	}
	return tr
}

func TestUringTransports_RoundTrip(t *testing.T) {
	for _, v2 := range []bool{false, true} {
		name := "iouring-go"
		if v2 {
			name = "go-uring"
		}
		t.Run(name, func(t *testing.T) {
			authority, cleanup := setupTcpTestServer(t, func(conn net.Conn) {
				buf := make([]byte, 1024)
				n, _ := conn.Read(buf)
				conn.Write([]byte("got " + string(buf[:n])))
			})
			defer cleanup()

			tr := newUringOrSkip(t, v2)
			defer tr.Close()

			require.NoError(t, tr.Connect(authority))

			n, err := tr.Write([]byte("GET"))
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			buf := make([]byte, 64)
			n, err = tr.Read(buf)
			require.NoError(t, err)
			assert.Equal(t, "got GET", string(buf[:n]))

			_, err = tr.Read(buf)
			requireTransportError(t, err, httperrors.ConnectionClosed)
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestUringTransport_NotConnected(t *testing.T) {
	tr := newUringOrSkip(t, false)
	defer tr.Close()

	_, err := tr.Write([]byte("x"))
	requireTransportError(t, err, httperrors.SocketWriteFailure)

	_, err = tr.Read(make([]byte, 1))
	requireTransportError(t, err, httperrors.SocketReadFailure)
}

func TestUringTransport_Connect_Refused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	authority := listener.Addr().String()
	listener.Close()

	tr := newUringOrSkip(t, false)
	defer tr.Close()

	err = tr.Connect(authority)
	requireTransportError(t, err, httperrors.SocketConnectFailure)
}
