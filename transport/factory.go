package transport

import (
	"fmt"
)

// Kind names a Transport implementation.
type Kind string

const (
	KindTcp    Kind = "tcp"
	KindUnix   Kind = "unix"
	KindUring  Kind = "uring"
	KindUring2 Kind = "uring2"
)

// Factory creates a fresh, unconnected Transport for one request.
type Factory func() (Transport, error)

// NewFactory returns a Factory producing transports of the given kind.
func NewFactory(kind Kind, opts Options) (Factory, error) {
	switch kind {
	case KindTcp, "":
		return func() (Transport, error) { return NewTcpTransport(opts), nil }, nil
	case KindUnix:
		return func() (Transport, error) { return NewUnixTransport(opts), nil }, nil
	case KindUring:
		return func() (Transport, error) {
			t, err := NewUringTransport()
			if err != nil {
				return nil, err
			}
			return t, nil
		}, nil
	case KindUring2:
		return func() (Transport, error) {
			t, err := NewUringTransportV2()
			if err != nil {
				return nil, err
			}
			return t, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown transport kind %q", kind)
	}
}
