package protocol

import (
	"bufio"
	stderrors "errors"
	"io"
	"strings"
)

// LineReader is the buffered view of a response stream: whole lines for the
// status line and header block, raw reads for the body. Both draw from the
// same buffer so nothing read ahead while scanning lines is lost.
type LineReader interface {
	// ReadLine returns the next line without its "\n" or "\r\n" ending.
	// A final unterminated line is returned as a line. io.EOF is returned
	// only when the stream ended with no data left.
	ReadLine() (string, error)

	// Read behaves like io.Reader.Read.
	Read(buf []byte) (int, error)
}

type bufferedLineReader struct {
	r *bufio.Reader
}

// NewLineReader wraps r in a buffered LineReader
func NewLineReader(r io.Reader) LineReader {
	return &bufferedLineReader{r: bufio.NewReader(r)}
}

func (b *bufferedLineReader) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if err != nil {
		if !isEOF(err) {
			return "", err
		}
		if line == "" {
			return "", io.EOF
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func (b *bufferedLineReader) Read(buf []byte) (int, error) {
	return b.r.Read(buf)
}

// isEOF reports a clean end of stream, including transport errors that wrap
// io.EOF.
func isEOF(err error) bool {
	return stderrors.Is(err, io.EOF)
}
