// Package resume drives a download to completion by re-requesting the
// missing byte range whenever the server closes a response early.
//
// All loop state (the bytes accumulated so far and the attempt count) lives
// here, in the caller. Each attempt is an independent request on a new
// connection.
package resume

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/nczempin/httpresume/headers"
	"github.com/nczempin/httpresume/protocol"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrTooManyAttempts is returned when MaxAttempts responses all ended early.
var ErrTooManyAttempts = errors.New("resume: download still incomplete after max attempts")

// Requester performs one GET. *client.HttpClient satisfies it.
type Requester interface {
	Request(url string, h *headers.Headers) (*protocol.HttpResponse, error)
}

// Options configures a Downloader.
type Options struct {
	// MaxAttempts caps the number of requests. 0 means no cap: the loop
	// keeps going for as long as the server keeps closing early.
	MaxAttempts int

	// Delay is waited between a truncated response and the next request.
	Delay time.Duration

	// Clock is used for Delay. Default: the wall clock.
	Clock clock.Clock

	// Logger receives one progress line per attempt. Default: no-op.
	Logger *zap.Logger
}

// Result is the outcome of a finished download.
type Result struct {
	Data       []byte
	Attempts   int
	StatusCode protocol.StatusCode
}

// Downloader accumulates a body across truncated responses.
type Downloader struct {
	requester Requester
	opts      Options
}

// NewDownloader creates a Downloader issuing requests through r.
func NewDownloader(r Requester, opts Options) *Downloader {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Downloader{requester: r, opts: opts}
}

// RangeHeader returns the header asking for everything from offset onwards.
func RangeHeader(offset int) headers.Header {
	return headers.NewHeader("Range", fmt.Sprintf("bytes=%d-", offset))
}

// Download fetches url until a response arrives complete. Every request
// carries a Range header starting at the number of bytes already held.
//
// A request error ends the download. When MaxAttempts runs out the partial
// Result is returned together with ErrTooManyAttempts.
func (d *Downloader) Download(ctx context.Context, url string) (*Result, error) {
	log := d.opts.Logger.With(
		zap.String("session", uuid.NewString()),
		zap.String("url", url),
	)

	result := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Attempts++
		h := headers.FromHeaders([]headers.Header{RangeHeader(len(result.Data))})

		resp, err := d.requester.Request(url, h)
		if err != nil {
			log.Warn("request failed", zap.Int("attempt", result.Attempts), zap.Error(err))
			return nil, pkgerrors.Wrapf(err, "attempt %d at offset %d", result.Attempts, len(result.Data))
		}

		result.Data = append(result.Data, resp.Body...)
		result.StatusCode = resp.StatusCode
		log.Info(fmt.Sprintf("%d bytes downloaded", len(result.Data)),
			zap.Int("attempt", result.Attempts),
			zap.Uint16("status", uint16(resp.StatusCode)),
			zap.Bool("premature_eof", resp.PrematureEOF),
		)

		if !resp.PrematureEOF {
			return result, nil
		}

		if d.opts.MaxAttempts > 0 && result.Attempts >= d.opts.MaxAttempts {
			return result, ErrTooManyAttempts
		}

		if err := d.wait(ctx); err != nil {
			return nil, err
		}
	}
}

func (d *Downloader) wait(ctx context.Context) error {
	if d.opts.Delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.opts.Clock.After(d.opts.Delay):
		return nil
	}
}
