// Package adaptive provides authenticated encryption with automatic
// algorithm selection.
//
// AES-GCM is used where hardware acceleration is available (amd64,
// arm64) and ChaCha20-Poly1305 elsewhere. The wire format is the same
// for both: nonce prepended to the sealed ciphertext.
package adaptive
