// Package example implements example middleware in an outside package.
package example

import (
	"context"
	"io"
	"log/slog"

	"github.com/phttp/phttp"
)

// ctxKey type scopes middlware values.
type ctxKey string

// Middleware provides an example for middleware that adds a logger to the context.
func Middleware(logs *slog.Logger) phttp.Middleware {
	return func(n phttp.Handler) phttp.Handler {
		return phttp.HandlerFunc(func(c context.Context, w io.Writer, r *phttp.Request) (bool, error) {
			logs := logs.With(slog.String("method", r.Method))

			c = context.WithValue(c, ctxKey("slog"), logs)

			return n.ServePHTTP(c, w, r)
		})
	}
}

func Log(ctx context.Context) *slog.Logger {
	v, _ := ctx.Value(ctxKey("slog")).(*slog.Logger)

	return v
}
