// Package buildinfo exposes version information injected at build
// time via ldflags.
package buildinfo
