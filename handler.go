package phttp

import (
	"context"
	"io"
)

// Handler handles one matched request. The writer is the raw connection: the
// handler owns the full response bytes, status line included (see
// [StartResponse]). The returned keepOpen reports whether the dispatcher
// should leave the connection open after the handler returns; the zero value
// means close. A returned error is routed to the application's error hook and
// the connection is closed regardless.
type Handler interface {
	ServePHTTP(ctx context.Context, w io.Writer, r *Request) (keepOpen bool, err error)
}

// HandlerFunc allows casting a function to an implementation of [Handler].
type HandlerFunc func(context.Context, io.Writer, *Request) (bool, error)

// ServePHTTP implements the [Handler] interface.
func (f HandlerFunc) ServePHTTP(ctx context.Context, w io.Writer, r *Request) (bool, error) {
	return f(ctx, w, r)
}

// ErrorHook is the single overridable entry point for failures: parse errors,
// handler errors and recovered panics all arrive here. The request may be nil
// or partially populated depending on how far dispatch got. The default hook
// does nothing observable; override it via [App.OnError] for logging or
// custom error pages.
type ErrorHook func(r *Request, w io.Writer, err error)
