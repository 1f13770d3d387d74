// Package localserver serves the HTTP API over a Unix domain socket.
//
// The socket gives local tooling (steward-cli on the same host,
// health probes) access to the full API without opening a TCP port.
// Rate limiting does not apply on this path; the filesystem
// permissions of the socket are the access control.
package localserver
