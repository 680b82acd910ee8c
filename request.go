package phttp

import (
	"bufio"
	"io"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Request carries one parsed exchange. It is owned by the dispatcher for the
// duration of a single connection attempt and discarded after the handler
// returns. Path is the path after mount-prefix stripping; Header is only
// populated when the matched route's header mode is [HeaderParse]. Body is
// the connection's reader, positioned according to the route's header mode:
// under [HeaderLeave] it still holds the unread header bytes.
type Request struct {
	Method string
	Path   string
	Query  string
	Proto  string
	Header map[string]string
	Body   *bufio.Reader
	Form   Values

	match []string
	names []string
}

func (r *Request) setMatch(m []string, pattern *regexp.Regexp) {
	if pattern == nil {
		return
	}

	r.match = m
	r.names = pattern.SubexpNames()
}

// Capture returns the i-th capture group of the pattern match, with index 0
// being the full match. It returns "" when the route was an exact match or
// the index is out of range.
func (r *Request) Capture(i int) string {
	if i < 0 || i >= len(r.match) {
		return ""
	}

	return r.match[i]
}

// NamedCapture returns the named capture group of the pattern match.
func (r *Request) NamedCapture(name string) string {
	for i, n := range r.names {
		if n == name && i < len(r.match) {
			return r.match[i]
		}
	}

	return ""
}

// ParseQueryForm decodes the URL query string into Form.
func (r *Request) ParseQueryForm() error {
	form, err := ParseQuery(r.Query)
	if err != nil {
		return err
	}

	r.Form = form

	return nil
}

// ReadForm reads Content-Length bytes of URL-encoded body from the
// connection and decodes them into Form. It requires the matched route to
// have parsed headers.
func (r *Request) ReadForm() error {
	cl, ok := r.Header["Content-Length"]
	if !ok {
		return errors.New("phttp: form body without Content-Length header")
	}

	size, err := strconv.Atoi(cl)
	if err != nil {
		return errors.Wrap(err, "parse Content-Length")
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r.Body, body); err != nil {
		return errors.Wrap(err, "read form body")
	}

	form, err := ParseQuery(string(body))
	if err != nil {
		return err
	}

	r.Form = form

	return nil
}
