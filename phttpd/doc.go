// Package phttpd is a batteries-included server runtime for the phttp
// dispatch engine: environment-driven configuration, zap logging,
// per-connection tracing, connection limiting and fx-managed lifecycle.
//
// A minimal server:
//
//	phttpd.NewApp[phttpd.BaseEnvironment](func(app *phttp.App) {
//	    app.HandleFunc("/hello", handleHello)
//	}).Run()
//
// Configuration comes from the PHTTP_* environment variables declared on
// [BaseEnvironment]; embed it in a custom struct to add your own.
package phttpd
