// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security holds the in-memory wrapper used for decrypted database
// passwords. A Secret never prints, logs or marshals its contents; the only
// way to read it is an explicit call to Reveal or Use.
package security

import (
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "[SECRET]"

// Secret is a plaintext password held in memory between decryption and the
// moment it is handed to a database driver.
type Secret []byte

// FromString wraps a plaintext string.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes copies in into a new Secret.
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter so every verb is redacted, including %#v.
func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalJSON redacts secrets in JSON output.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalText redacts secrets for text encoders (yaml, log fields).
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// IsEmpty reports whether no password is held.
func (s Secret) IsEmpty() bool { return len(s) == 0 }

// Reveal returns the plaintext. Call it only at the point where a driver DSN
// or an encryption call needs the value.
func (s Secret) Reveal() string { return string(s) }

// Bytes returns a copy of the underlying bytes.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// Use calls fn with the underlying bytes without copying.
func (s Secret) Use(fn func([]byte) error) error {
	return fn([]byte(s))
}

// Zero overwrites the underlying bytes.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}
