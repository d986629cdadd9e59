package protocol

import (
	"strings"

	"github.com/nczempin/httpresume/errors"
)

// SchemePrefix is the only URL scheme accepted
const SchemePrefix = "http://"

// SplitURL strips the scheme and splits the rest at the first "/" into the
// authority and the request path. Without a "/" the path is "/".
func SplitURL(url string) (authority string, path string, err error) {
	rest, ok := strings.CutPrefix(url, SchemePrefix)
	if !ok {
		return "", "", errors.NewRequestError(errors.InvalidUrl, nil)
	}

	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i], rest[i:], nil
	}
	return rest, "/", nil
}
