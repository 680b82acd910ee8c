package phttpd

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	addr() string
	serviceName() string
	logLevel() zapcore.Level
	otelExporter() string
	lazyInit() bool
	maxConns() int
	readTimeout() time.Duration
}

// BaseEnvironment contains the server's environment variables. Embed this in
// your custom environment struct.
type BaseEnvironment struct {
	Addr         string        `env:"PHTTP_ADDR" envDefault:":8080"`
	ServiceName  string        `env:"PHTTP_SERVICE_NAME" envDefault:"phttpd"`
	LogLevel     zapcore.Level `env:"PHTTP_LOG_LEVEL" envDefault:"info"`
	OtelExporter string        `env:"PHTTP_OTEL_EXPORTER" envDefault:"stdout"`
	// LazyInit defers each application's one-time init to its first resolved
	// request instead of initializing every mounted application at startup.
	LazyInit bool `env:"PHTTP_LAZY_INIT" envDefault:"false"`
	// MaxConns caps concurrently served connections; 0 means unlimited.
	MaxConns int `env:"PHTTP_MAX_CONNS" envDefault:"0"`
	// ReadTimeout is applied as a per-connection read deadline; a timeout
	// surfaces as a read error on the engine's error-hook path. 0 disables it.
	ReadTimeout time.Duration `env:"PHTTP_READ_TIMEOUT" envDefault:"0s"`
}

func (e BaseEnvironment) addr() string {
	return e.Addr
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}

func (e BaseEnvironment) lazyInit() bool {
	return e.LazyInit
}

func (e BaseEnvironment) maxConns() int {
	return e.MaxConns
}

func (e BaseEnvironment) readTimeout() time.Duration {
	return e.ReadTimeout
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
