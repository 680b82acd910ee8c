package phttp

import (
	"bufio"
	"io"
	"net/textproto"
	"strings"

	"github.com/cockroachdb/errors"
)

// Limits caps what the parser reads for one request. They exist so hostile
// peers cannot force unbounded reads; values <= 0 disable the cap.
type Limits struct {
	// MaxLineBytes caps a single request or header line, terminator
	// included.
	MaxLineBytes int

	// MaxHeaderCount caps the number of header lines under [HeaderParse].
	MaxHeaderCount int
}

// DefaultLimits are the limits applied by [NewApp] unless overridden with
// [WithLimits].
var DefaultLimits = Limits{MaxLineBytes: 8192, MaxHeaderCount: 128}

// readLine reads one CRLF-terminated line without its terminator, tolerating
// a bare LF. io.EOF is returned untouched only when no bytes were read; a
// final unterminated line is returned as-is.
func readLine(rd *bufio.Reader, maxBytes int) (string, error) {
	var buf []byte

	for {
		frag, err := rd.ReadSlice('\n')
		buf = append(buf, frag...)

		if maxBytes > 0 && len(buf) > maxBytes {
			return "", errors.Wrapf(ErrHeaderLimit, "line exceeds %d bytes", maxBytes)
		}

		if err == nil {
			break
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		if errors.Is(err, io.EOF) {
			if len(buf) == 0 {
				return "", io.EOF
			}

			break
		}

		return "", errors.Wrap(err, "read line")
	}

	return strings.TrimRight(string(buf), "\r\n"), nil
}

// readRequestLine reads and splits the "METHOD path proto" line. io.EOF
// passes through untouched when the peer closed before sending anything.
func readRequestLine(rd *bufio.Reader, limits Limits) (method, target, proto string, err error) {
	line, err := readLine(rd, limits.MaxLineBytes)
	if err != nil {
		return "", "", "", err
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", "", "", errors.Wrapf(ErrMalformedRequestLine, "%q", line)
	}

	return fields[0], fields[1], fields[2], nil
}

// parseHeaders reads header lines until the empty line. Each line splits on
// the first ':'; names are canonicalized for handler convenience and values
// have surrounding whitespace trimmed.
func parseHeaders(rd *bufio.Reader, limits Limits) (map[string]string, error) {
	headers := map[string]string{}

	for count := 0; ; count++ {
		if limits.MaxHeaderCount > 0 && count >= limits.MaxHeaderCount {
			return nil, errors.Wrapf(ErrHeaderLimit, "more than %d header lines", limits.MaxHeaderCount)
		}

		line, err := readLine(rd, limits.MaxLineBytes)
		if err != nil {
			return nil, errors.Wrap(err, "read header line")
		}

		if line == "" {
			return headers, nil
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.Wrapf(ErrMalformedHeader, "%q", line)
		}

		headers[textproto.CanonicalMIMEHeaderKey(name)] = strings.TrimSpace(value)
	}
}

// discardHeaders drains header lines until the empty line without building a
// mapping, so the socket can still be closed cleanly for an abandoned
// exchange.
func discardHeaders(rd *bufio.Reader, limits Limits) error {
	for {
		line, err := readLine(rd, limits.MaxLineBytes)
		if err != nil {
			return errors.Wrap(err, "discard header line")
		}

		if line == "" {
			return nil
		}
	}
}
