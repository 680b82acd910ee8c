package phttp

import (
	"io/fs"

	"github.com/cockroachdb/errors"
)

// Kind classifies the failures that can end a connection. It can be used by
// error hooks to decide structurally how to respond, without matching on
// error strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindMalformedRequestLine
	KindMalformedHeader
	KindHeaderLimit
	KindInvalidEscape
	KindForbiddenPath
	KindResourceNotFound
	KindHandlerPanic
)

// String names the kind for logs and error pages.
func (k Kind) String() string {
	switch k {
	case KindMalformedRequestLine:
		return "malformed request line"
	case KindMalformedHeader:
		return "malformed header"
	case KindHeaderLimit:
		return "header limit exceeded"
	case KindInvalidEscape:
		return "invalid percent escape"
	case KindForbiddenPath:
		return "forbidden path"
	case KindResourceNotFound:
		return "resource not found"
	case KindHandlerPanic:
		return "handler panic"
	default:
		return "unknown"
	}
}

// errEmptyRead signals that the peer closed the connection before sending
// anything. It is a normal terminal state, never surfaced to the error hook.
var errEmptyRead = errors.New("phttp: empty read")

var (
	// ErrMalformedRequestLine marks a request line with fewer than 3 tokens.
	ErrMalformedRequestLine = errors.New("phttp: malformed request line")

	// ErrMalformedHeader marks a header line without a ':' separator.
	ErrMalformedHeader = errors.New("phttp: malformed header line")

	// ErrHeaderLimit marks a violation of the configured parser limits.
	ErrHeaderLimit = errors.New("phttp: header limit exceeded")

	// ErrInvalidEscape marks a malformed percent escape in a query string.
	ErrInvalidEscape = errors.New("phttp: invalid percent escape")

	// ErrForbiddenPath marks a static path containing a parent-directory
	// sequence.
	ErrForbiddenPath = errors.New("phttp: forbidden path")

	// errHandlerPanic wraps a recovered panic from handler invocation.
	errHandlerPanic = errors.New("phttp: handler panic")
)

// KindOf returns the kind of the error if it is or wraps one of the package's
// marker errors and [KindUnknown] otherwise. Absent backing resources are
// reported through [fs.ErrNotExist] so loaders can stay plain fs
// implementations.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrMalformedRequestLine):
		return KindMalformedRequestLine
	case errors.Is(err, ErrMalformedHeader):
		return KindMalformedHeader
	case errors.Is(err, ErrHeaderLimit):
		return KindHeaderLimit
	case errors.Is(err, ErrInvalidEscape):
		return KindInvalidEscape
	case errors.Is(err, ErrForbiddenPath):
		return KindForbiddenPath
	case errors.Is(err, fs.ErrNotExist):
		return KindResourceNotFound
	case errors.Is(err, errHandlerPanic):
		return KindHandlerPanic
	}

	return KindUnknown
}
