package phttp

import (
	"log"
	"sync/atomic"
)

// App owns the route table, the mount table and the connection-handling
// policy of one (sub-)application. The object graph is read-only after
// startup: request handling never mutates route or mount data, only the
// one-time init flag.
type App struct {
	routes []routeEntry
	static *routeEntry
	mounts []mountEntry
	inited atomic.Bool

	headerMode HeaderMode
	limits     Limits
	resources  ResourceLoader
	templates  *templateSet
	logs       Logger
	errHook    ErrorHook
	onInit     func()

	middlewares struct {
		captured bool
		chain    []Middleware
	}
}

type appConfig struct {
	headerMode HeaderMode
	limits     Limits
	resources  ResourceLoader
	logs       Logger
	onInit     func()
	routes     []RouteDef
	noStatic   bool
}

// Option configures an App at construction time.
type Option func(*appConfig)

// WithDefaultHeaders sets the application-wide default header mode. Routes
// without an explicit [WithHeaders] option inherit it. The default is
// [HeaderParse].
func WithDefaultHeaders(m HeaderMode) Option {
	return func(c *appConfig) { c.headerMode = m }
}

// WithLimits overrides the parser limits, [DefaultLimits] otherwise.
func WithLimits(l Limits) Option {
	return func(c *appConfig) { c.limits = l }
}

// WithResources sets the loader used for static files and templates.
func WithResources(loader ResourceLoader) Option {
	return func(c *appConfig) { c.resources = loader }
}

// WithLogger overrides the standard-library logger.
func WithLogger(logs Logger) Option {
	return func(c *appConfig) { c.logs = logs }
}

// WithRoutes supplies the application's initial route table.
func WithRoutes(defs ...RouteDef) Option {
	return func(c *appConfig) { c.routes = append(c.routes, defs...) }
}

// WithOnInit registers one-time setup run by [App.Init].
func WithOnInit(f func()) Option {
	return func(c *appConfig) { c.onInit = f }
}

// WithoutStatic disables the static-file fallback route.
func WithoutStatic() Option {
	return func(c *appConfig) { c.noStatic = true }
}

// NewApp constructs an application. Unless [WithoutStatic] is given, a
// fallback route serving "/static/..." paths from the configured resource
// loader is installed; it is tried only after every explicitly registered
// route.
func NewApp(opts ...Option) *App {
	cfg := appConfig{
		headerMode: HeaderParse,
		limits:     DefaultLimits,
		logs:       NewStdLogger(log.Default()),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	app := &App{
		headerMode: cfg.headerMode,
		limits:     cfg.limits,
		resources:  cfg.resources,
		logs:       cfg.logs,
		onInit:     cfg.onInit,
	}
	app.templates = newTemplateSet(cfg.resources)

	for _, def := range cfg.routes {
		app.addRoute(routeEntry{
			exact:   def.Path,
			pattern: def.Pattern,
			handler: def.Handler,
		}, def.Options...)
	}

	if !cfg.noStatic {
		app.static = &routeEntry{
			pattern: staticPattern,
			handler: HandlerFunc(app.handleStatic),
		}
	}

	return app
}

// Init marks the application ready and runs the one-time init hook. It is
// idempotent by construction: the flag is a compare-and-set, so concurrent
// first requests to the same application run the hook at most once.
func (a *App) Init() {
	if !a.inited.CompareAndSwap(false, true) {
		return
	}

	if a.onInit != nil {
		a.onInit()
	}
}

// InitAll eagerly initializes the application and, recursively, every
// mounted sub-application. Without it, each application initializes lazily
// on its first resolved request.
func (a *App) InitAll() {
	a.Init()
	for _, m := range a.mounts {
		m.app.InitAll()
	}
}

// Inited reports whether Init has run.
func (a *App) Inited() bool {
	return a.inited.Load()
}

// OnError overrides the error hook. The default hook does nothing
// observable. A panic raised by the hook itself propagates to the caller of
// ServeConn; the connection is still closed.
func (a *App) OnError(h ErrorHook) {
	a.errHook = h
}

// Use allows providing of middleware around matched handlers.
func (a *App) Use(mw ...Middleware) {
	a.ensureNoUseAfterHandle()
	a.middlewares.chain = append(a.middlewares.chain, mw...)
}

func (a *App) ensureNoUseAfterHandle() {
	if a.middlewares.captured {
		panic("phttp: cannot call Use() after calling Handle")
	}
}
