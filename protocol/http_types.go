package protocol

import "github.com/nczempin/httpresume/headers"

// StatusCode is the numeric code from a response status line
type StatusCode uint16

// HttpResponse is the outcome of one GET request. It is built once and
// owned by the caller afterwards.
type HttpResponse struct {
	StatusCode StatusCode
	Headers    *headers.Headers
	Body       []byte

	// ContentLength is the body length the server declared.
	ContentLength int

	// PrematureEOF is set when the peer closed the stream before
	// ContentLength bytes arrived. Body then holds what did arrive.
	PrematureEOF bool
}

// Received returns the number of body bytes actually read
func (r *HttpResponse) Received() int {
	return len(r.Body)
}
