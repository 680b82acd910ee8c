package phttp_test

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/phttp/phttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConn is an in-memory stand-in for an accepted connection.
type testConn struct {
	in     io.Reader
	out    bytes.Buffer
	closes int
}

func newTestConn(in string) *testConn {
	return &testConn{in: strings.NewReader(in)}
}

func (c *testConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *testConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c *testConn) Close() error {
	c.closes++
	return nil
}

func newTestApp(tb testing.TB, opts ...phttp.Option) *phttp.App {
	opts = append([]phttp.Option{
		phttp.WithoutStatic(),
		phttp.WithLogger(phttp.NewTestLogger(tb)),
	}, opts...)

	return phttp.NewApp(opts...)
}

func okHandler(body string) phttp.HandlerFunc {
	return func(_ context.Context, w io.Writer, _ *phttp.Request) (bool, error) {
		if err := phttp.StartResponse(w, "text/plain", phttp.StatusOK, nil); err != nil {
			return false, err
		}

		_, err := io.WriteString(w, body)

		return false, err
	}
}

func TestDispatchExactRoute(t *testing.T) {
	app := newTestApp(t)

	var seen *phttp.Request
	app.HandleFunc("/hello", func(_ context.Context, w io.Writer, r *phttp.Request) (bool, error) {
		seen = r
		return false, phttp.StartResponse(w, "", "", nil)
	})

	conn := newTestConn("GET /hello?a=1 HTTP/1.0\r\nHost: example\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	require.NotNil(t, seen)
	assert.Equal(t, "GET", seen.Method)
	assert.Equal(t, "/hello", seen.Path)
	assert.Equal(t, "a=1", seen.Query)
	assert.Equal(t, "HTTP/1.0", seen.Proto)
	assert.Equal(t, "example", seen.Header["Host"])

	assert.True(t, strings.HasPrefix(conn.out.String(), "HTTP/1.0 200 NA\r\n"))
	assert.Equal(t, 1, conn.closes)
}

func TestDispatchPatternCaptures(t *testing.T) {
	app := newTestApp(t)

	app.HandleReFunc(regexp.MustCompile(`^/users/(?P<id>\d+)$`),
		func(_ context.Context, w io.Writer, r *phttp.Request) (bool, error) {
			require.Equal(t, "42", r.Capture(1))
			require.Equal(t, "42", r.NamedCapture("id"))
			return false, phttp.WriteStatus(w, phttp.StatusOK)
		})

	conn := newTestConn("GET /users/42 HTTP/1.0\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	assert.Contains(t, conn.out.String(), "HTTP/1.0 200 NA")
}

func TestDispatchPatternAnchoredAtStart(t *testing.T) {
	app := newTestApp(t)

	matched := 0
	app.HandleReFunc(regexp.MustCompile(`/foo`),
		func(_ context.Context, w io.Writer, _ *phttp.Request) (bool, error) {
			matched++
			return false, phttp.WriteStatus(w, phttp.StatusOK)
		})

	// a match beginning mid-path must not claim the route
	conn := newTestConn("GET /bar/foo HTTP/1.0\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	assert.Zero(t, matched)
	assert.True(t, strings.HasPrefix(conn.out.String(), "HTTP/1.0 404 NA\r\n"))

	// the same pattern still claims paths it matches from the first byte
	conn = newTestConn("GET /foo/baz HTTP/1.0\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	assert.Equal(t, 1, matched)
}

func TestDispatchRouteOrderFirstWins(t *testing.T) {
	app := newTestApp(t)

	// both patterns match /foo/1, the one registered first is selected
	app.HandleReFunc(regexp.MustCompile(`^/foo/.+$`), okHandler("first"))
	app.HandleReFunc(regexp.MustCompile(`^/foo/1$`), okHandler("second"))

	conn := newTestConn("GET /foo/1 HTTP/1.0\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	assert.Contains(t, conn.out.String(), "first")
	assert.NotContains(t, conn.out.String(), "second")
}

func TestDispatchNotFound(t *testing.T) {
	app := newTestApp(t)

	hooked := 0
	app.OnError(func(*phttp.Request, io.Writer, error) { hooked++ })

	conn := newTestConn("GET /nope HTTP/1.0\r\nHost: example\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	assert.True(t, strings.HasPrefix(conn.out.String(), "HTTP/1.0 404 NA\r\n"))
	assert.Contains(t, conn.out.String(), "\r\n\r\n404\r\n")
	assert.Equal(t, 1, conn.closes)
	assert.Zero(t, hooked, "route misses must not reach the error hook")
}

func TestDispatchEmptyRead(t *testing.T) {
	app := newTestApp(t)

	hooked := 0
	app.OnError(func(*phttp.Request, io.Writer, error) { hooked++ })

	conn := newTestConn("")
	app.ServeConn(context.Background(), conn)

	assert.Zero(t, conn.out.Len(), "no response bytes on an empty first read")
	assert.Equal(t, 1, conn.closes)
	assert.Zero(t, hooked)
}

func TestDispatchHandlerError(t *testing.T) {
	logs := phttp.NewTestLogger(t)
	app := phttp.NewApp(phttp.WithoutStatic(), phttp.WithLogger(logs))

	boom := errors.New("boom")
	app.HandleFunc("/fail", func(context.Context, io.Writer, *phttp.Request) (bool, error) {
		return false, boom
	})

	var hookErrs []error
	app.OnError(func(r *phttp.Request, _ io.Writer, err error) {
		require.NotNil(t, r)
		hookErrs = append(hookErrs, err)
	})

	conn := newTestConn("GET /fail HTTP/1.0\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	require.Len(t, hookErrs, 1)
	assert.ErrorIs(t, hookErrs[0], boom)
	assert.Equal(t, 1, conn.closes, "connection closed after the hook ran")
	assert.Equal(t, int64(1), logs.NumLogDispatchError)
}

func TestDispatchHandlerPanic(t *testing.T) {
	app := newTestApp(t)
	app.HandleFunc("/panic", func(context.Context, io.Writer, *phttp.Request) (bool, error) {
		panic("kaboom")
	})

	var hookErrs []error
	app.OnError(func(_ *phttp.Request, _ io.Writer, err error) { hookErrs = append(hookErrs, err) })

	conn := newTestConn("GET /panic HTTP/1.0\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	require.Len(t, hookErrs, 1)
	assert.Equal(t, phttp.KindHandlerPanic, phttp.KindOf(hookErrs[0]))
	assert.Contains(t, hookErrs[0].Error(), "kaboom")
	assert.Equal(t, 1, conn.closes)
}

func TestDispatchMalformedRequestLine(t *testing.T) {
	app := newTestApp(t)

	var hookErrs []error
	app.OnError(func(_ *phttp.Request, _ io.Writer, err error) { hookErrs = append(hookErrs, err) })

	conn := newTestConn("GARBAGE\r\n")
	app.ServeConn(context.Background(), conn)

	require.Len(t, hookErrs, 1)
	assert.ErrorIs(t, hookErrs[0], phttp.ErrMalformedRequestLine)
	assert.Equal(t, 1, conn.closes)
}

func TestDispatchKeepOpen(t *testing.T) {
	app := newTestApp(t)
	app.HandleFunc("/stream", func(_ context.Context, w io.Writer, _ *phttp.Request) (bool, error) {
		return true, phttp.StartResponse(w, "", "", nil)
	})

	conn := newTestConn("GET /stream HTTP/1.0\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	assert.Zero(t, conn.closes, "handler asked to keep the connection open")
}

func TestDispatchHeaderSkip(t *testing.T) {
	app := newTestApp(t)

	app.HandleFunc("/skip", func(_ context.Context, w io.Writer, r *phttp.Request) (bool, error) {
		require.Nil(t, r.Header, "skip mode never builds the header mapping")
		return false, phttp.WriteStatus(w, phttp.StatusOK)
	}, phttp.WithHeaders(phttp.HeaderSkip))

	conn := newTestConn("GET /skip HTTP/1.0\r\nHost: example\r\nX-More: y\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	assert.Contains(t, conn.out.String(), "HTTP/1.0 200 NA")
}

func TestDispatchHeaderLeave(t *testing.T) {
	app := newTestApp(t)

	app.HandleFunc("/leave", func(_ context.Context, w io.Writer, r *phttp.Request) (bool, error) {
		require.Nil(t, r.Header)

		// the reader sits immediately after the request line
		line, err := r.Body.ReadString('\n')
		require.NoError(t, err)
		require.Equal(t, "Host: example\r\n", line)

		return false, phttp.WriteStatus(w, phttp.StatusOK)
	}, phttp.WithHeaders(phttp.HeaderLeave))

	conn := newTestConn("GET /leave HTTP/1.0\r\nHost: example\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	assert.Contains(t, conn.out.String(), "HTTP/1.0 200 NA")
}

func TestDispatchHeaderLimitReachesHook(t *testing.T) {
	app := newTestApp(t, phttp.WithLimits(phttp.Limits{MaxLineBytes: 1024, MaxHeaderCount: 2}))
	app.HandleFunc("/x", okHandler("never"))

	var hookErrs []error
	app.OnError(func(_ *phttp.Request, _ io.Writer, err error) { hookErrs = append(hookErrs, err) })

	conn := newTestConn("GET /x HTTP/1.0\r\nA: 1\r\nB: 2\r\nC: 3\r\n\r\n")
	app.ServeConn(context.Background(), conn)

	require.Len(t, hookErrs, 1)
	assert.ErrorIs(t, hookErrs[0], phttp.ErrHeaderLimit)
	assert.Equal(t, 1, conn.closes)
}

func TestDispatchHookPanicStillCloses(t *testing.T) {
	app := newTestApp(t)
	app.HandleFunc("/fail", func(context.Context, io.Writer, *phttp.Request) (bool, error) {
		return false, errors.New("boom")
	})
	app.OnError(func(*phttp.Request, io.Writer, error) { panic("hook gone wrong") })

	conn := newTestConn("GET /fail HTTP/1.0\r\n\r\n")
	require.Panics(t, func() { app.ServeConn(context.Background(), conn) })
	assert.Equal(t, 1, conn.closes, "close is guaranteed even when the hook panics")
}

func TestDispatchLazyInit(t *testing.T) {
	inits := 0
	app := newTestApp(t, phttp.WithOnInit(func() { inits++ }))
	app.HandleFunc("/x", okHandler("ok"))

	require.False(t, app.Inited())

	for range 2 {
		conn := newTestConn("GET /x HTTP/1.0\r\n\r\n")
		app.ServeConn(context.Background(), conn)
	}

	assert.True(t, app.Inited())
	assert.Equal(t, 1, inits, "init hook runs once")
}

func TestInitAllEager(t *testing.T) {
	subInits := 0
	root := newTestApp(t)
	sub := newTestApp(t, phttp.WithOnInit(func() { subInits++ }))
	inner := newTestApp(t)

	sub.Mount("/inner", inner)
	root.Mount("/api", sub)

	root.InitAll()

	assert.True(t, root.Inited())
	assert.True(t, sub.Inited())
	assert.True(t, inner.Inited())
	assert.Equal(t, 1, subInits)
}
