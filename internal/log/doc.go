// Package log provides secure logging built on top of the standard slog package.
//
// The SecureHandler masks sensitive attributes (cookies, authorization
// headers, tokens, Discuz! session values) before they reach the
// underlying handler, so that a shared log never leaks the forum login
// configured in .iloveck101.
//
// Three output formats are available:
//   - text: slog.TextHandler (default)
//   - json: slog.JSONHandler
//   - pretty: charmbracelet/log, coloured when writing to a terminal
//
// # Usage
//
//	logger := log.New(os.Stderr, "pretty", verbose)
//	slog.SetDefault(logger)
//
//	logger.Info("request sent",
//	    "cookie", "auth=abc123", // logged as ***REDACTED***
//	    "url", "http://ck101.com/thread-1-1-1.html",
//	)
package log
