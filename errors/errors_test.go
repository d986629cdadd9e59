package errors

import (
	stderrors "errors"
	"io"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestError_Messages(t *testing.T) {
	testcases := []struct {
		desc     string
		err      *Error
		expected string
	}{
		{
			desc:     "invalid url",
			err:      NewRequestError(InvalidUrl, nil),
			expected: "The URL is invalid",
		},
		{
			desc:     "parse error carries reason",
			err:      NewParseError(ReasonNoContentLength),
			expected: "Error parsing response: No Content-Length header present",
		},
		{
			desc:     "underlying cause is shown",
			err:      NewRequestError(ReadError, io.ErrUnexpectedEOF),
			expected: "Error reading response (underlying: unexpected EOF)",
		},
		{
			desc:     "transport error",
			err:      NewTransportError(SocketConnectFailure, nil),
			expected: "Transport Error: Socket connection failed",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	err := NewParseError(ReasonStatusCodeMissing)

	assert.ErrorIs(t, err, NewRequestError(ResponseParseError, nil))
	assert.ErrorIs(t, err, NewParseError(ReasonStatusCodeMissing))
	assert.NotErrorIs(t, err, NewParseError(ReasonFirstLineMissing))
	assert.NotErrorIs(t, err, NewRequestError(ReadError, nil))
}

func TestError_UnwrapReachesTransportError(t *testing.T) {
	cause := NewTransportError(ConnectionClosed, io.EOF)
	err := NewRequestError(ReadError, pkgerrors.Wrap(cause, "read body"))

	var te *Error
	require.True(t, stderrors.As(pkgerrors.Cause(err.Unwrap()), &te))
	require.NotNil(t, te.TransportErr)
	assert.Equal(t, ConnectionClosed, *te.TransportErr)
	assert.ErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, err, NewTransportError(ConnectionClosed, nil))
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(pkgerrors.Wrap(NewRequestError(WriteError, nil), "send"))
	require.True(t, ok)
	assert.Equal(t, WriteError, kind)

	_, ok = KindOf(io.EOF)
	assert.False(t, ok)

	_, ok = KindOf(NewTransportError(DnsFailure, nil))
	assert.False(t, ok)
}
