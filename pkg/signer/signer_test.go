package signer

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignUnsignRoundTrip(t *testing.T) {
	s := New("super-secret")

	for _, payload := range []string{"hello", "", "pay.load.with.dots", "swut_abc123"} {
		signed := s.Sign(payload)
		got, err := s.Unsign(signed)
		if err != nil {
			t.Fatalf("Unsign(%q): %v", signed, err)
		}
		if got != payload {
			t.Errorf("Unsign = %q; want %q", got, payload)
		}
	}
}

func TestUnsignRejectsTampering(t *testing.T) {
	s := New("super-secret")
	signed := s.Sign("payload")

	cases := map[string]string{
		"unsigned":    "payload",
		"empty":       "",
		"flipped":     strings.Replace(signed, "payload", "paYload", 1),
		"cut sig":     signed[:len(signed)-2],
		"wrong key":   New("other-secret").Sign("payload"),
		"garbage sig": "payload.notbase64!!!",
	}

	for name, input := range cases {
		if _, err := s.Unsign(input); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("%s: err = %v; want ErrInvalidSignature", name, err)
		}
	}
}

func TestSignersWithDifferentKeysAreIndependent(t *testing.T) {
	a := New("key-a")
	b := New("key-b")

	signed := a.Sign("payload")
	if _, err := b.Unsign(signed); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("cross-key Unsign err = %v; want ErrInvalidSignature", err)
	}
	if _, err := a.Unsign(signed); err != nil {
		t.Errorf("same-key Unsign err = %v; want nil", err)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	s := NewTimestamp("super-secret")

	signed := s.Sign("payload")
	got, err := s.Unsign(signed, time.Minute)
	if err != nil {
		t.Fatalf("Unsign: %v", err)
	}
	if got != "payload" {
		t.Errorf("Unsign = %q; want %q", got, "payload")
	}
}

func TestTimestampExpiry(t *testing.T) {
	now := time.Now()
	clock := now
	s := NewTimestamp("super-secret", WithClock(func() time.Time { return clock }))

	signed := s.Sign("payload")

	// Fresh within the window.
	if _, err := s.Unsign(signed, time.Second); err != nil {
		t.Fatalf("fresh Unsign: %v", err)
	}

	// Two seconds later a one-second window must report expiry, not a
	// signature failure.
	clock = now.Add(2 * time.Second)
	if _, err := s.Unsign(signed, time.Second); !errors.Is(err, ErrExpired) {
		t.Errorf("stale Unsign err = %v; want ErrExpired", err)
	}

	// maxAge <= 0 disables the age check entirely.
	clock = now.Add(240 * time.Hour)
	if _, err := s.Unsign(signed, 0); err != nil {
		t.Errorf("ageless Unsign err = %v; want nil", err)
	}
}

func TestTimestampRejectsPlainSigned(t *testing.T) {
	plain := New("super-secret")
	timed := NewTimestamp("super-secret")

	// A plain-signed value carries no timestamp segment; the timestamp
	// signer must reject it rather than misread the payload.
	if _, err := timed.Unsign(plain.Sign("payload"), time.Minute); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("err = %v; want ErrInvalidSignature", err)
	}
}
