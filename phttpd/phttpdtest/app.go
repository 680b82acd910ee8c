// Package phttpdtest provides test helpers for phttpd applications.
//
// It constructs the identical DI graph as [phttpd.NewApp] but uses
// [fxtest.App] which fails the test immediately on DI errors.
//
// Example:
//
//	t.Setenv("PHTTP_ADDR", "127.0.0.1:18081")
//	app := phttpdtest.New[phttpd.BaseEnvironment](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package phttpdtest

import (
	"testing"

	"github.com/phttp/phttp/phttpd"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing phttpd applications.
type App struct {
	*fxtest.App
}

// New creates a test app with the same DI graph as [phttpd.NewApp].
func New[E phttpd.Environment](t testing.TB, routing any, opts ...phttpd.Option) *App {
	return &App{App: fxtest.New(t, phttpd.FxOptions[E](routing, opts...)...)}
}
