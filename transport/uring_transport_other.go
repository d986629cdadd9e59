//go:build !linux

package transport

import (
	httperrors "github.com/nczempin/httpresume/errors"
	pkgerrors "github.com/pkg/errors"
)

var errUringUnsupported = pkgerrors.New("io_uring is only available on linux")

// NewUringTransport reports that io_uring is unavailable on this platform.
func NewUringTransport() (Transport, error) {
	return nil, httperrors.NewTransportError(httperrors.InitFailure, errUringUnsupported)
}

// NewUringTransportV2 reports that io_uring is unavailable on this platform.
func NewUringTransportV2() (Transport, error) {
	return nil, httperrors.NewTransportError(httperrors.InitFailure, errUringUnsupported)
}
