// Package httpserver provides the HTTP/HTTPS server for Steward.
//
// It wraps net/http with the middleware chain used by the server
// binary: request ids, panic recovery, per-client rate limiting,
// request logging and metrics observation.
package httpserver
