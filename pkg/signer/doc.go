// Package signer provides HMAC signing of opaque string tokens.
//
// Two disciplines are offered: Signer produces signatures that stay
// valid for as long as the key does, and TimestampSigner embeds the
// issuance time so verification can enforce a maximum age. Verification
// distinguishes a corrupt or unsigned value (ErrInvalidSignature) from
// one whose signature checks out but is too old (ErrExpired).
//
// Signing is a pure function of payload, key, and (for the timestamped
// variant) the clock; no I/O is performed. Independent instances with
// different keys do not interfere.
package signer
