package phttp

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// ServeConn runs the full exchange for one accepted connection: read the
// request line, resolve the mount chain and the route, apply the route's
// header mode, invoke the handler, and close the connection unless the
// handler asked to keep it open. Failures never escape the connection: parse
// errors, handler errors and recovered panics are routed to the resolved
// application's error hook, after which the connection is closed. An empty
// first read closes silently with no response and no hook.
func (a *App) ServeConn(ctx context.Context, conn io.ReadWriteCloser) {
	var (
		req      *Request
		keepOpen bool
	)

	// The close decision is evaluated exactly once, and deferred so it also
	// holds when the error hook panics.
	defer func() {
		if keepOpen {
			return
		}

		if err := conn.Close(); err != nil {
			a.logs.LogConnCloseError(err)
		}
	}()

	app, err := a.dispatch(ctx, conn, &req, &keepOpen)
	if err == nil || errors.Is(err, errEmptyRead) {
		return
	}

	keepOpen = false
	app.logs.LogDispatchError(err)

	if app.errHook != nil {
		app.errHook(req, conn, err)
	}
}

// dispatch runs the per-connection states up to and including handler
// invocation. It returns the application the request resolved to, so the
// caller can route errors to that application's hook. Panics from parsing or
// the handler are recovered into the returned error.
func (a *App) dispatch(
	ctx context.Context, conn io.ReadWriteCloser, reqOut **Request, keepOpen *bool,
) (app *App, err error) {
	app = a

	defer func() {
		if v := recover(); v != nil {
			err = errors.Wrapf(errHandlerPanic, "%v", v)
		}
	}()

	rd := bufio.NewReader(conn)

	method, target, proto, err := readRequestLine(rd, a.limits)
	if errors.Is(err, io.EOF) {
		return app, errEmptyRead
	}

	if err != nil {
		return app, err
	}

	path, query, _ := strings.Cut(target, "?")
	app, path = a.resolveMount(path)
	app.Init()

	req := &Request{
		Method: method,
		Path:   path,
		Query:  query,
		Proto:  proto,
		Body:   rd,
	}
	*reqOut = req

	entry, match := app.resolveRoute(path)

	// An unmatched request is abandoned, but the socket still gets drained.
	mode := HeaderSkip
	if entry != nil {
		mode = entry.headers
		if mode == headerAppDefault {
			mode = app.headerMode
		}
	}

	switch mode {
	case HeaderParse:
		req.Header, err = parseHeaders(rd, app.limits)
		if err != nil {
			return app, err
		}
	case HeaderSkip:
		if err := discardHeaders(rd, app.limits); err != nil {
			return app, err
		}
	case HeaderLeave:
		// the handler consumes the remaining bytes itself
	}

	if entry == nil {
		return app, WriteStatus(conn, StatusNotFound)
	}

	req.setMatch(match, entry.pattern)

	handler := Wrap(entry.handler, app.middlewares.chain...)
	*keepOpen, err = handler.ServePHTTP(ctx, conn, req)

	return app, err
}
