package phttpd

import (
	"context"
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/phttp/phttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

// ServerParams holds the dependencies for creating the TCP server.
type ServerParams struct {
	fx.In

	Env        Environment
	App        *phttp.App
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
}

// Server accepts TCP connections and hands each one to the dispatch engine
// on its own goroutine.
type Server struct {
	env    Environment
	app    *phttp.App
	logs   *zap.Logger
	tracer trace.Tracer
}

// NewServer creates the server around the root application.
func NewServer(params ServerParams) *Server {
	return &Server{
		env:    params.Env,
		app:    params.App,
		logs:   params.Logger,
		tracer: params.TracerProv.Tracer("phttpd"),
	}
}

// Serve accepts connections until the listener closes. The engine scopes all
// request failures to their connection, so the accept loop only ends on
// listener errors.
func (s *Server) Serve(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.logs.Error("accept failed", zap.Error(err))

			return
		}

		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	ctx, span := s.tracer.Start(context.Background(), "phttp.dispatch",
		trace.WithAttributes(attribute.String("net.peer.addr", conn.RemoteAddr().String())))
	defer span.End()

	if t := s.env.readTimeout(); t > 0 {
		// a timeout surfaces as a read error into the engine's error-hook path
		_ = conn.SetReadDeadline(time.Now().Add(t))
	}

	s.app.ServeConn(ctx, conn)
}

// startServerHook registers lifecycle hooks for the server: bind, eager
// application init unless lazy init is configured, and listener close on
// stop.
func startServerHook(lc fx.Lifecycle, srv *Server, env Environment, app *phttp.App, logger *zap.Logger) {
	var ln net.Listener

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if !env.lazyInit() {
				app.InitAll()
			}

			var err error
			ln, err = net.Listen("tcp", env.addr())
			if err != nil {
				return errors.Wrapf(err, "listen on %s", env.addr())
			}

			if limit := env.maxConns(); limit > 0 {
				ln = netutil.LimitListener(ln, limit)
			}

			logger.Info("starting server", zap.String("addr", ln.Addr().String()))
			go srv.Serve(ln)

			return nil
		},
		OnStop: func(context.Context) error {
			logger.Info("stopping server")
			return ln.Close()
		},
	})
}
