package phttpd

import (
	"context"

	"github.com/phttp/phttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	EngineOptions []phttp.Option
	FxOptions     []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithEngineOptions passes construction options to the root dispatch
// application, e.g. phttp.WithDefaultHeaders or phttp.WithoutStatic.
func WithEngineOptions(opts ...phttp.Option) Option {
	return func(c *AppConfig) {
		c.EngineOptions = append(c.EngineOptions, opts...)
	}
}

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithResources provides the loader backing static files and templates.
func WithResources(loader phttp.ResourceLoader) Option {
	return WithFx(fx.Supply(fx.Annotate(loader, fx.As(new(phttp.ResourceLoader)))))
}

// rootAppParams holds dependencies for the root dispatch application.
type rootAppParams struct {
	fx.In

	Logger *zap.Logger
	Loader phttp.ResourceLoader `optional:"true"`
}

// NewApp creates a batteries-included server with dependency injection.
//
// The routing function can request any types that are provided via fx
// options. At minimum, it should accept *phttp.App to register routes and
// mounts.
//
// Example:
//
//	phttpd.NewApp[phttpd.BaseEnvironment](func(app *phttp.App) {
//	    app.HandleFunc("/hello", handleHello)
//	}).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// FxOptions returns the full fx option set behind [NewApp]. It is exposed so
// test helpers can build the identical DI graph on fxtest.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 9+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewTracerProvider),
		fx.Provide(func(p rootAppParams) *phttp.App {
			engineOpts := []phttp.Option{phttp.WithLogger(newZapPHTTPLogger(p.Logger))}
			if p.Loader != nil {
				engineOpts = append(engineOpts, phttp.WithResources(p.Loader))
			}
			engineOpts = append(engineOpts, cfg.EngineOptions...)

			return phttp.NewApp(engineOpts...)
		}),
		fx.Provide(NewServer),
		fx.Invoke(startServerHook),
		fx.Invoke(routing),
	}...)

	baseOpts = append(baseOpts, cfg.FxOptions...)

	return baseOpts
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context and blocks until the
// context is done, then stops it.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
