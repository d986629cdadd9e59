package errors

import "fmt"

// TransportError represents errors that occur at the transport layer
type TransportError int

const (
	DnsFailure TransportError = iota
	SocketCreateFailure
	SocketConnectFailure
	SocketWriteFailure
	SocketReadFailure
	ConnectionClosed
	SocketCloseFailure
	InitFailure
	UringSubmitFailure
)

func (e TransportError) Error() string {
	switch e {
	case DnsFailure:
		return "DNS lookup failed"
	case SocketCreateFailure:
		return "Socket creation failed"
	case SocketConnectFailure:
		return "Socket connection failed"
	case SocketWriteFailure:
		return "Socket write failed"
	case SocketReadFailure:
		return "Socket read failed"
	case ConnectionClosed:
		return "Connection closed"
	case SocketCloseFailure:
		return "Socket close failed"
	case InitFailure:
		return "Initialization failed"
	case UringSubmitFailure:
		return "io_uring submission failed"
	default:
		return fmt.Sprintf("Unknown transport error: %d", e)
	}
}

// RequestErrorKind is the closed set of ways a single GET request can fail.
type RequestErrorKind int

const (
	InvalidUrl RequestErrorKind = iota
	ConnectionFailed
	WriteError
	ReadError
	ResponseParseError
)

func (k RequestErrorKind) Error() string {
	switch k {
	case InvalidUrl:
		return "The URL is invalid"
	case ConnectionFailed:
		return "Connection failed"
	case WriteError:
		return "Error writing request"
	case ReadError:
		return "Error reading response"
	case ResponseParseError:
		return "Error parsing response"
	default:
		return fmt.Sprintf("Unknown request error: %d", k)
	}
}

// Fixed reasons carried by ResponseParseError.
const (
	ReasonFirstLineMissing     = "First line missing"
	ReasonStatusCodeMissing    = "Status code missing"
	ReasonStatusCodeNotNumber  = "Status code isn't a number"
	ReasonHeaderUnparsable     = "Couldn't parse header"
	ReasonNoContentLength      = "No Content-Length header present"
	ReasonContentLengthInvalid = "Content-Length is not a number"
)

// Error is the top-level error type that wraps transport and request errors
type Error struct {
	TransportErr *TransportError
	RequestErr   *RequestErrorKind
	Reason       string
	underlying   error
}

func (e *Error) Error() string {
	if e.RequestErr != nil {
		msg := e.RequestErr.Error()
		if e.Reason != "" {
			msg = fmt.Sprintf("%s: %s", msg, e.Reason)
		}
		if e.underlying != nil {
			return fmt.Sprintf("%s (underlying: %v)", msg, e.underlying)
		}
		return msg
	}
	if e.TransportErr != nil {
		if e.underlying != nil {
			return fmt.Sprintf("Transport Error: %s (underlying: %v)", e.TransportErr.Error(), e.underlying)
		}
		return fmt.Sprintf("Transport Error: %s", e.TransportErr.Error())
	}
	if e.underlying != nil {
		return e.underlying.Error()
	}
	return "Unknown error"
}

func (e *Error) Unwrap() error {
	return e.underlying
}

// Is matches another *Error of the same request kind (and reason, when the
// target names one) or the same transport kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.RequestErr != nil {
		if e.RequestErr == nil || *e.RequestErr != *t.RequestErr {
			return false
		}
		return t.Reason == "" || t.Reason == e.Reason
	}
	if t.TransportErr != nil {
		return e.TransportErr != nil && *e.TransportErr == *t.TransportErr
	}
	return false
}

// Kind reports the request error kind and whether e carries one.
func (e *Error) Kind() (RequestErrorKind, bool) {
	if e.RequestErr == nil {
		return 0, false
	}
	return *e.RequestErr, true
}

// NewTransportError creates a new Error with a TransportError
func NewTransportError(te TransportError, underlying error) *Error {
	return &Error{
		TransportErr: &te,
		underlying:   underlying,
	}
}

// NewRequestError creates a new Error with a RequestErrorKind
func NewRequestError(kind RequestErrorKind, underlying error) *Error {
	return &Error{
		RequestErr: &kind,
		underlying: underlying,
	}
}

// NewParseError creates a ResponseParseError with one of the fixed reasons
func NewParseError(reason string) *Error {
	kind := ResponseParseError
	return &Error{
		RequestErr: &kind,
		Reason:     reason,
	}
}

// KindOf walks the chain of err and returns the first request error kind found.
func KindOf(err error) (RequestErrorKind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if k, ok := e.Kind(); ok {
				return k, true
			}
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}
