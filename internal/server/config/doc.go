// Package config defines the steward-server configuration structure,
// its defaults, and validation.
package config
