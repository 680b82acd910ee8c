package phttp

import (
	"context"
	"io"
	"io/fs"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// staticPattern is the catch-all matcher of the fallback route installed by
// [NewApp].
var staticPattern = regexp.MustCompile("^/(static/.+)")

// ResourceLoader resolves bundled resources (static files, templates) by
// relative name. A missing resource is reported with an error satisfying
// errors.Is(err, fs.ErrNotExist).
type ResourceLoader interface {
	Open(name string) (io.ReadCloser, error)
}

// FSResources adapts an fs.FS, typically an embed.FS, into a
// [ResourceLoader].
func FSResources(fsys fs.FS) ResourceLoader {
	return fsResources{fsys}
}

type fsResources struct{ fsys fs.FS }

func (r fsResources) Open(name string) (io.ReadCloser, error) {
	return r.fsys.Open(name)
}

// MIMEType guesses a content type from the file extension.
func MIMEType(name string) string {
	switch {
	case strings.HasSuffix(name, ".html"):
		return "text/html"
	case strings.HasSuffix(name, ".css"):
		return "text/css"
	case strings.HasSuffix(name, ".png"), strings.HasSuffix(name, ".jpg"):
		return "image"
	default:
		return "text/plain"
	}
}

const sendBufSize = 4096

// SendFile streams the named resource as a response, guessing the content
// type from the extension when none is given. A missing resource or nil
// loader emits a 404; any other load or stream failure propagates to the
// caller.
func SendFile(w io.Writer, loader ResourceLoader, name, contentType string, headers map[string]string) error {
	if loader == nil {
		return WriteStatus(w, StatusNotFound)
	}

	f, err := loader.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return WriteStatus(w, StatusNotFound)
	}

	if err != nil {
		return errors.Wrapf(err, "open resource %q", name)
	}
	defer f.Close()

	if contentType == "" {
		contentType = MIMEType(name)
	}

	if err := StartResponse(w, contentType, StatusOK, headers); err != nil {
		return err
	}

	if _, err := io.CopyBuffer(w, f, make([]byte, sendBufSize)); err != nil {
		return errors.Wrapf(err, "stream resource %q", name)
	}

	return nil
}

// handleStatic serves the captured static path from the application's
// resource loader. Any captured name containing ".." anywhere is rejected
// with a 403; that also rejects legitimate names carrying the substring
// outside path-separator context, a conservative choice kept on purpose.
func (a *App) handleStatic(_ context.Context, w io.Writer, r *Request) (bool, error) {
	name := r.Capture(1)
	if strings.Contains(name, "..") {
		return false, WriteStatus(w, StatusForbidden)
	}

	return false, SendFile(w, a.resources, name, "", nil)
}
