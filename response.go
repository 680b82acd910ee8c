package phttp

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Status tokens as they appear on the wire. Responses carry the bare token
// with an "NA" placeholder where a reason phrase would go; that is a known
// deviation from the standard, kept because no reason phrase is meaningful
// to this engine.
const (
	StatusOK          = "200"
	StatusForbidden   = "403"
	StatusNotFound    = "404"
	StatusServerError = "500"
)

// DefaultContentType is used by response helpers given an empty content
// type.
const DefaultContentType = "text/html; charset=utf-8"

// StartResponse writes the HTTP/1.0 response line and header block: status
// line, Content-Type, any extra headers and the blank separator line. Extra
// headers are emitted in sorted key order so output is deterministic.
func StartResponse(w io.Writer, contentType, status string, headers map[string]string) error {
	if contentType == "" {
		contentType = DefaultContentType
	}

	if status == "" {
		status = StatusOK
	}

	if _, err := fmt.Fprintf(w, "HTTP/1.0 %s NA\r\nContent-Type: %s\r\n", status, contentType); err != nil {
		return errors.Wrap(err, "write response head")
	}

	keys := lo.Keys(headers)
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", key, headers[key]); err != nil {
			return errors.Wrapf(err, "write response header %q", key)
		}
	}

	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return errors.Wrap(err, "finish response head")
	}

	return nil
}

// WriteStatus emits a minimal response for the status token, with the token
// itself as the body.
func WriteStatus(w io.Writer, status string) error {
	if err := StartResponse(w, "", status, nil); err != nil {
		return err
	}

	_, err := io.WriteString(w, status+"\r\n")

	return errors.Wrap(err, "write status body")
}

// JSON emits v as an application/json response.
func JSON(w io.Writer, v any) error {
	if err := StartResponse(w, "application/json", StatusOK, nil); err != nil {
		return err
	}

	return errors.Wrap(json.NewEncoder(w).Encode(v), "encode json body")
}
