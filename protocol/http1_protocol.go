package protocol

import (
	"io"
	"strconv"
	"strings"

	"github.com/nczempin/httpresume/errors"
	"github.com/nczempin/httpresume/headers"
	"github.com/nczempin/httpresume/transport"
	pkgerrors "github.com/pkg/errors"
)

const contentLengthKey = "Content-Length"

// Http1Protocol implements a single HTTP/1.1 GET exchange over a transport
type Http1Protocol struct {
	transport transport.Transport
	buffer    []byte
}

// NewHttp1Protocol creates a new HTTP/1.1 protocol handler
func NewHttp1Protocol(t transport.Transport) *Http1Protocol {
	return &Http1Protocol{
		transport: t,
		buffer:    make([]byte, 0, 1024),
	}
}

// Connect establishes a connection to authority
func (p *Http1Protocol) Connect(authority string) error {
	if err := p.transport.Connect(authority); err != nil {
		return errors.NewRequestError(errors.ConnectionFailed, err)
	}
	return nil
}

// Disconnect closes the connection
func (p *Http1Protocol) Disconnect() error {
	return p.transport.Close()
}

// BuildRequest formats a GET request for path into the internal buffer:
// the request line, the header block and a blank line. No body is sent.
func (p *Http1Protocol) BuildRequest(path string, h *headers.Headers) []byte {
	p.buffer = p.buffer[:0] // Reset buffer

	p.buffer = append(p.buffer, "GET "...)
	p.buffer = append(p.buffer, path...)
	p.buffer = append(p.buffer, " HTTP/1.1\n"...)
	p.buffer = append(p.buffer, h.String()...)
	p.buffer = append(p.buffer, "\n\n"...)

	return p.buffer
}

// PerformGet writes a GET request for path and parses the response from the
// same connection.
func (p *Http1Protocol) PerformGet(path string, h *headers.Headers) (*HttpResponse, error) {
	if err := p.writeAll(p.BuildRequest(path, h)); err != nil {
		return nil, err
	}

	return ReadResponse(NewLineReader(p.transport))
}

func (p *Http1Protocol) writeAll(buf []byte) error {
	for written := 0; written < len(buf); {
		n, err := p.transport.Write(buf[written:])
		if err != nil {
			return errors.NewRequestError(errors.WriteError, err)
		}
		if n <= 0 {
			return errors.NewRequestError(errors.WriteError, io.ErrShortWrite)
		}
		written += n
	}
	return nil
}

// ReadResponse parses a status line, a header block terminated by an empty
// line and a Content-Length sized body from r.
func ReadResponse(r LineReader) (*HttpResponse, error) {
	statusCode, err := readStatusLine(r)
	if err != nil {
		return nil, err
	}

	respHeaders, err := readHeaders(r)
	if err != nil {
		return nil, err
	}

	contentLength, err := parseContentLength(respHeaders)
	if err != nil {
		return nil, err
	}

	body, err := readBody(r, contentLength)
	if err != nil {
		return nil, err
	}

	return &HttpResponse{
		StatusCode:    statusCode,
		Headers:       respHeaders,
		Body:          body,
		ContentLength: contentLength,
		PrematureEOF:  len(body) < contentLength,
	}, nil
}

// readStatusLine parses "HTTP/1.1 200 OK"; only the code is kept
func readStatusLine(r LineReader) (StatusCode, error) {
	line, err := r.ReadLine()
	if err != nil {
		if isEOF(err) {
			return 0, errors.NewParseError(errors.ReasonFirstLineMissing)
		}
		return 0, errors.NewRequestError(errors.ReadError, pkgerrors.Wrap(err, "read status line"))
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0, errors.NewParseError(errors.ReasonStatusCodeMissing)
	}

	code, err := parseUnsigned(parts[1], 16)
	if err != nil {
		return 0, errors.NewParseError(errors.ReasonStatusCodeNotNumber)
	}

	return StatusCode(code), nil
}

// readHeaders collects header lines up to and including the empty line that
// separates them from the body. The empty line is checked before parsing.
func readHeaders(r LineReader) (*headers.Headers, error) {
	h := headers.New()
	for {
		line, err := r.ReadLine()
		if err != nil {
			if isEOF(err) {
				return h, nil
			}
			return nil, errors.NewRequestError(errors.ReadError, pkgerrors.Wrap(err, "read header line"))
		}

		if line == "" {
			return h, nil
		}

		header, err := headers.ParseHeader(line)
		if err != nil {
			return nil, errors.NewParseError(errors.ReasonHeaderUnparsable)
		}
		h.Push(header)
	}
}

func parseContentLength(h *headers.Headers) (int, error) {
	value, ok := h.Get(contentLengthKey)
	if !ok {
		return 0, errors.NewParseError(errors.ReasonNoContentLength)
	}

	length, err := parseUnsigned(value, 0)
	if err != nil || length > uint64(maxInt) {
		return 0, errors.NewParseError(errors.ReasonContentLengthInvalid)
	}

	return int(length), nil
}

const maxInt = int(^uint(0) >> 1)

// parseUnsigned parses a decimal number that may carry a single leading '+'.
func parseUnsigned(s string, bitSize int) (uint64, error) {
	digits := strings.TrimPrefix(s, "+")
	if digits == "" || digits[0] == '+' {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(digits, 10, bitSize)
}

// readBody reads until contentLength bytes arrived or the stream ends. The
// returned slice is cut to what was received.
func readBody(r LineReader, contentLength int) ([]byte, error) {
	body := make([]byte, contentLength)

	nread := 0
	for nread < len(body) {
		n, err := r.Read(body[nread:])
		nread += n
		if err != nil {
			if isEOF(err) {
				break
			}
			return nil, errors.NewRequestError(errors.ReadError, pkgerrors.Wrap(err, "read body"))
		}
		if n == 0 {
			break
		}
	}

	return body[:nread], nil
}
