// Package headers holds an ordered collection of HTTP header lines.
//
// Names keep their original spelling for serialization and are compared
// case-insensitively on lookup. Duplicates are kept; lookups return the
// first match.
package headers

import (
	"errors"
	"strings"
)

const separator = ": "

// ErrHeaderParse is returned when a line has no ": " separator.
var ErrHeaderParse = errors.New("headers: line is not of the form \"name: value\"")

// Header is a single name/value pair
type Header struct {
	Key   string
	Value string
}

// NewHeader creates a Header
func NewHeader(key, value string) Header {
	return Header{Key: key, Value: value}
}

// ParseHeader splits line on the first ": ". Anything after it, including
// further separators, belongs to the value.
func ParseHeader(line string) (Header, error) {
	key, value, found := strings.Cut(line, separator)
	if !found {
		return Header{}, ErrHeaderParse
	}
	return Header{Key: key, Value: value}, nil
}

// String formats the header as "<name>: <value>"
func (h Header) String() string {
	return h.Key + separator + h.Value
}

// Headers is an ordered list of Header entries
type Headers struct {
	list []Header
}

// New creates an empty collection
func New() *Headers {
	return &Headers{}
}

// FromPairs builds a collection from name/value pairs, keeping their order.
func FromPairs(pairs [][2]string) *Headers {
	h := &Headers{list: make([]Header, 0, len(pairs))}
	for _, p := range pairs {
		h.Add(p[0], p[1])
	}
	return h
}

// FromHeaders builds a collection from pre-built entries, keeping their order.
func FromHeaders(list []Header) *Headers {
	h := &Headers{list: make([]Header, len(list))}
	copy(h.list, list)
	return h
}

// Add appends a new entry
func (h *Headers) Add(key, value string) {
	h.list = append(h.list, Header{Key: key, Value: value})
}

// Push appends a pre-built entry
func (h *Headers) Push(header Header) {
	h.list = append(h.list, header)
}

// Get returns the value of the first entry whose name matches key,
// ignoring case.
func (h *Headers) Get(key string) (string, bool) {
	for _, header := range h.list {
		if strings.EqualFold(header.Key, key) {
			return header.Value, true
		}
	}
	return "", false
}

// Values returns every value stored under key, in insertion order.
func (h *Headers) Values(key string) []string {
	var values []string
	for _, header := range h.list {
		if strings.EqualFold(header.Key, key) {
			values = append(values, header.Value)
		}
	}
	return values
}

// Len returns the number of entries
func (h *Headers) Len() int {
	return len(h.list)
}

// All returns a copy of the entries in insertion order
func (h *Headers) All() []Header {
	out := make([]Header, len(h.list))
	copy(out, h.list)
	return out
}

// String renders the header block: one "<name>: <value>" line per entry,
// joined by "\n", with no trailing newline.
func (h *Headers) String() string {
	var sb strings.Builder
	for i, header := range h.list {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(header.Key)
		sb.WriteString(separator)
		sb.WriteString(header.Value)
	}
	return sb.String()
}
