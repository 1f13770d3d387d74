// Package tlsroots provides TLS certificate management.
//
// Pool builds a trust pool from system roots plus custom CA files,
// used by steward-cli to talk to servers with private CAs. Reloader
// serves the server certificate and hot-reloads it when the files
// change, so certificate rotation does not need a restart.
package tlsroots
