// Package shutdown coordinates graceful process termination.
//
// The handler waits for SIGINT or SIGTERM and runs registered hooks
// in reverse order under a deadline, so the HTTP listener drains
// before the worker stops and the store closes last.
package shutdown
