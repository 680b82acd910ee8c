// Package phttp provides a minimal HTTP request-dispatch engine over raw
// connections.
//
// # Overview
//
// phttp reads an HTTP/1.0-shaped request straight off an accepted
// connection, matches the path against an ordered route table (exact strings
// or patterns with capture groups), optionally delegates to a mounted
// sub-application by path prefix, invokes the matched handler and guarantees
// the connection is drained and closed correctly in all cases, handler
// failure included. It assumes one request per connection and closes after
// each exchange unless the handler explicitly opts out.
//
// A minimal example:
//
//	app := phttp.NewApp()
//	app.HandleFunc("/hello", func(ctx context.Context, w io.Writer, r *phttp.Request) (bool, error) {
//	    if err := phttp.StartResponse(w, "", phttp.StatusOK, nil); err != nil {
//	        return false, err
//	    }
//	    _, err := io.WriteString(w, "hello")
//	    return false, err
//	})
//
//	ln, _ := net.Listen("tcp", ":8080")
//	for {
//	    conn, err := ln.Accept()
//	    if err != nil {
//	        break
//	    }
//	    go app.ServeConn(context.Background(), conn)
//	}
//
// # Handler Signature
//
// Handlers receive the raw connection writer and own the complete response
// bytes, status line included (see [StartResponse], [WriteStatus], [JSON]
// and [SendFile]). They return a keepOpen decision and an error:
//
//	func(ctx context.Context, w io.Writer, r *phttp.Request) (keepOpen bool, err error)
//
// Returning keepOpen=false, the zero value, closes the connection after the
// handler returns. A returned error is routed to the application's error
// hook ([App.OnError]) and the connection is closed regardless.
//
// # Header Modes
//
// Each route decides how request headers are consumed before invocation,
// defaulting to the application-wide mode:
//
//   - [HeaderParse] builds Request.Header
//   - [HeaderSkip] drains header lines without building the mapping
//   - [HeaderLeave] stops after the request line; the handler reads the
//     remaining bytes itself via Request.Body
//
// # Mounting
//
// [App.Mount] delegates a URL subtree to a nested application. Resolution
// picks the longest matching prefix, strips it from the path and recurses
// into the sub-application's own tables, so deeply nested applications
// compose naturally.
//
// # Static Files
//
// Unless disabled with [WithoutStatic], a fallback route serves
// "/static/..." paths from the configured [ResourceLoader], rejecting
// parent-directory traversal with a 403 and missing resources with a 404.
// The fallback is tried only after every explicitly registered route.
//
// # Wire Format
//
// Responses are HTTP/1.0-framed with a literal "NA" in place of the reason
// phrase; no reason phrase is meaningful to this engine and the placeholder
// is a documented deviation from the standard.
//
// For a batteries-included server runtime with environment configuration,
// zap logging, tracing and lifecycle management, see the phttpd subpackage.
package phttp
