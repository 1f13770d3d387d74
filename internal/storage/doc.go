// Package storage defines the persistence interfaces for Steward and
// a Badger-backed implementation of them.
//
// Services depend only on the store interfaces declared here; the
// concrete engine (in-memory or Badger) is selected at startup from
// configuration. All implementations must be safe for concurrent use.
package storage
