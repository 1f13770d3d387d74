// Package token provides random token generation and hashing helpers.
//
// Generated values are Base64 RawURL encoded so they can travel in
// headers, form fields, and URLs without escaping.
package token
