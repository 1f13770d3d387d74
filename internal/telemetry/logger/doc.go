// Package logger provides structured logging for Steward.
//
// It configures log/slog with JSON or text output, a dynamically
// adjustable level, and automatic redaction of sensitive values:
// token payloads (swut_/swat_ prefixes) are partially masked and
// attributes with secret-looking keys are fully redacted.
package logger
