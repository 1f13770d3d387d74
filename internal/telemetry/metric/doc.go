// Package metric exposes Steward's Prometheus metrics.
//
// One Metrics value owns a private registry with the session, command,
// and HTTP instruments; the handler it exposes serves the standard
// text format for scraping.
package metric
