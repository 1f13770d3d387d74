// Package confloader loads server configuration.
//
// Koanf merges sources in priority order (env over file over
// defaults), and a filesystem watcher triggers reloads when the
// config file changes on disk.
package confloader
