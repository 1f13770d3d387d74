// Package cmap provides a concurrent map implementation for Steward.
//
// The map is sharded so that the session registry and the in-memory
// record store can be hit from many request handlers at once without
// funneling every operation through one lock. Each shard carries its
// own RWMutex; reads take RLock, writes take Lock.
//
// Usage:
//
//	m := cmap.New[string, *Session]()
//	m.Set("stss-...", session)
//	val, ok := m.Get("stss-...")
package cmap
