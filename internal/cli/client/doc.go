// Package client provides the HTTP API client for steward-cli.
//
// It wraps the server's JSON envelope: success payloads decode into
// typed responses, error envelopes surface as *APIError carrying the
// server's error code.
package client
