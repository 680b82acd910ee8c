package phttp

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogDispatchError(err error)
	LogConnCloseError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogDispatchError(err error) {
	l.Logger.Printf("phttp: dispatch error: %s", err)
}

func (l stdLogger) LogConnCloseError(err error) {
	l.Logger.Printf("phttp: error while closing connection: %s", err)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogDispatchError  int64
	NumLogConnCloseError int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogDispatchError(err error) {
	atomic.AddInt64(&l.NumLogDispatchError, 1)
	l.tb.Logf("phttp: dispatch error: %s", err)
}

func (l *TestLogger) LogConnCloseError(err error) {
	atomic.AddInt64(&l.NumLogConnCloseError, 1)
	l.tb.Logf("phttp: error while closing connection: %s", err)
}

var _ Logger = &TestLogger{}
