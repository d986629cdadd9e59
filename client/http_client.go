package client

import (
	"github.com/nczempin/httpresume/errors"
	"github.com/nczempin/httpresume/headers"
	"github.com/nczempin/httpresume/protocol"
	"github.com/nczempin/httpresume/transport"
	"go.uber.org/zap"
)

// Options configures an HttpClient
type Options struct {
	// Transport creates the connection for each request.
	// Default: plain TCP with no timeouts.
	Transport transport.Factory

	// Logger receives per-request debug events.
	// Default: no-op.
	Logger *zap.Logger
}

// HttpClient issues single GET requests, opening a new connection for each
type HttpClient struct {
	newTransport transport.Factory
	logger       *zap.Logger
}

// NewHttpClient creates a new HTTP client with the given options
func NewHttpClient(opts Options) *HttpClient {
	c := &HttpClient{
		newTransport: opts.Transport,
		logger:       opts.Logger,
	}
	if c.newTransport == nil {
		c.newTransport = func() (transport.Transport, error) {
			return transport.NewTcpTransport(transport.Options{}), nil
		}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

var defaultClient = NewHttpClient(Options{})

// HttpRequest performs a GET of url over TCP with the default client.
// See HttpClient.Request.
func HttpRequest(url string, h *headers.Headers) (*protocol.HttpResponse, error) {
	return defaultClient.Request(url, h)
}

// Request performs a GET of url. A Host header naming the URL's authority is
// appended to h, which may already carry headers such as Range.
//
// A body shorter than the declared Content-Length is not an error: the
// response comes back with PrematureEOF set and the bytes that did arrive.
func (c *HttpClient) Request(url string, h *headers.Headers) (*protocol.HttpResponse, error) {
	authority, path, err := protocol.SplitURL(url)
	if err != nil {
		return nil, err
	}

	if h == nil {
		h = headers.New()
	}
	h.Add("Host", authority)

	log := c.logger.With(zap.String("authority", authority), zap.String("path", path))

	tr, err := c.newTransport()
	if err != nil {
		return nil, errors.NewRequestError(errors.ConnectionFailed, err)
	}

	proto := protocol.NewHttp1Protocol(tr)
	if err := proto.Connect(authority); err != nil {
		tr.Close()
		log.Debug("connect failed", zap.Error(err))
		return nil, err
	}
	defer proto.Disconnect()
	log.Debug("connected")

	resp, err := proto.PerformGet(path, h)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return nil, err
	}

	log.Debug("response received",
		zap.Uint16("status", uint16(resp.StatusCode)),
		zap.Int("content_length", resp.ContentLength),
		zap.Int("received", resp.Received()),
		zap.Bool("premature_eof", resp.PrematureEOF),
	)

	return resp, nil
}
