package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
	"time"
)

// Verification errors.
var (
	// ErrInvalidSignature indicates the value is unsigned, corrupt, or
	// signed with a different key.
	ErrInvalidSignature = errors.New("signer: invalid signature")

	// ErrExpired indicates the signature is valid but older than the
	// permitted maximum age.
	ErrExpired = errors.New("signer: signature expired")
)

// sep separates payload, timestamp, and signature segments. Signed
// values split on the last occurrence, so payloads may contain it.
const sep = "."

// Signer signs and verifies opaque string payloads with HMAC-SHA256.
type Signer struct {
	key []byte
}

// New creates a Signer from a secret key.
func New(key string) *Signer {
	return &Signer{key: []byte(key)}
}

// Sign returns the payload with an appended signature segment.
func (s *Signer) Sign(payload string) string {
	return payload + sep + s.signature(payload)
}

// Unsign verifies a signed value and returns the original payload.
// Returns ErrInvalidSignature if the value has no signature segment or
// the signature does not match.
func (s *Signer) Unsign(signed string) (string, error) {
	idx := strings.LastIndex(signed, sep)
	if idx < 0 {
		return "", ErrInvalidSignature
	}

	payload, sig := signed[:idx], signed[idx+len(sep):]
	if subtle.ConstantTimeCompare([]byte(sig), []byte(s.signature(payload))) != 1 {
		return "", ErrInvalidSignature
	}
	return payload, nil
}

func (s *Signer) signature(payload string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// TimestampSigner signs payloads together with the issuance time so
// verification can enforce a maximum age.
type TimestampSigner struct {
	inner *Signer
	now   func() time.Time
}

// TimestampOption configures a TimestampSigner.
type TimestampOption func(*TimestampSigner)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) TimestampOption {
	return func(s *TimestampSigner) {
		s.now = now
	}
}

// NewTimestamp creates a TimestampSigner from a secret key.
func NewTimestamp(key string, opts ...TimestampOption) *TimestampSigner {
	s := &TimestampSigner{
		inner: New(key),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign returns the payload with appended timestamp and signature segments.
func (s *TimestampSigner) Sign(payload string) string {
	return s.inner.Sign(payload + sep + encodeTime(s.now()))
}

// Unsign verifies a signed value and returns the original payload.
//
// Returns ErrInvalidSignature when the signature or the embedded
// timestamp is corrupt, and ErrExpired when the signature is valid but
// the value is older than maxAge. A maxAge <= 0 disables the age check.
func (s *TimestampSigner) Unsign(signed string, maxAge time.Duration) (string, error) {
	value, err := s.inner.Unsign(signed)
	if err != nil {
		return "", err
	}

	idx := strings.LastIndex(value, sep)
	if idx < 0 {
		return "", ErrInvalidSignature
	}

	payload := value[:idx]
	issued, err := decodeTime(value[idx+len(sep):])
	if err != nil {
		return "", ErrInvalidSignature
	}

	if maxAge > 0 && s.now().Sub(issued) > maxAge {
		return "", ErrExpired
	}
	return payload, nil
}

func encodeTime(t time.Time) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(t.Unix()))
	return base64.RawURLEncoding.EncodeToString(buf[:])
}

func decodeTime(encoded string) (time.Time, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return time.Time{}, err
	}
	if len(raw) != 8 {
		return time.Time{}, ErrInvalidSignature
	}
	return time.Unix(int64(binary.BigEndian.Uint64(raw)), 0), nil
}
