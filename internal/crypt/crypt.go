// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package crypt seals individual secret strings with XChaCha20-Poly1305.
//
// A token is the unpadded base64url encoding of
//
//	version(1) || keyID(4) || nonce(24) || ciphertext+tag
//
// The version byte and key id are authenticated as associated data, so a
// token produced under another key is reported as ErrKeyMismatch before the
// tag is even checked.
package crypt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/toeirei/allsqladmin/internal/keyvault"
)

const (
	version1   byte = 1
	keyIDSize       = 4
	headerSize      = 1 + keyIDSize
)

var encoding = base64.RawURLEncoding.Strict()

// Reasons carried by DecryptionError.
var (
	ErrMalformed   = errors.New("malformed ciphertext")
	ErrVersion     = errors.New("unsupported ciphertext version")
	ErrKeyMismatch = errors.New("ciphertext was sealed with a different key")
	ErrAuth        = errors.New("message authentication failed")
)

// DecryptionError reports a ciphertext that cannot be opened with the given
// key. It is recoverable: callers fall back to an empty password or prompt.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string { return "decrypt: " + e.Err.Error() }

func (e *DecryptionError) Unwrap() error { return e.Err }

// nonceReader is the nonce source; tests may replace it.
var nonceReader io.Reader = rand.Reader

// Encrypt seals plaintext under key and returns a printable token.
func Encrypt(plaintext string, key keyvault.Key) (string, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	id := key.ID()

	var header [headerSize]byte
	header[0] = version1
	copy(header[1:], id[:])

	buf := make([]byte, headerSize+aead.NonceSize(), headerSize+aead.NonceSize()+len(plaintext)+aead.Overhead())
	copy(buf, header[:])
	nonce := buf[headerSize:]
	if _, err := io.ReadFull(nonceReader, nonce); err != nil {
		return "", fmt.Errorf("encrypt: read nonce: %w", err)
	}
	// The header is authenticated but must not alias dst.
	sealed := aead.Seal(buf, nonce, []byte(plaintext), header[:])
	return encoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt. Every failure is a
// *DecryptionError; a token is never silently decoded to other plaintext.
func Decrypt(token string, key keyvault.Key) (string, error) {
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return "", &DecryptionError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	if len(raw) < headerSize+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return "", &DecryptionError{Err: fmt.Errorf("%w: truncated", ErrMalformed)}
	}
	if raw[0] != version1 {
		return "", &DecryptionError{Err: fmt.Errorf("%w: %d", ErrVersion, raw[0])}
	}
	id := key.ID()
	if string(raw[1:headerSize]) != string(id[:]) {
		return "", &DecryptionError{Err: ErrKeyMismatch}
	}

	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return "", &DecryptionError{Err: err}
	}
	nonce := raw[headerSize : headerSize+aead.NonceSize()]
	plain, err := aead.Open(nil, nonce, raw[headerSize+aead.NonceSize():], raw[:headerSize])
	if err != nil {
		return "", &DecryptionError{Err: ErrAuth}
	}
	return string(plain), nil
}

// Sealer binds a key to Encrypt/Decrypt so callers such as the profile
// store need not carry key material around.
type Sealer struct {
	key keyvault.Key
}

// NewSealer returns a Sealer for key.
func NewSealer(key keyvault.Key) *Sealer {
	return &Sealer{key: key}
}

// Seal encrypts plaintext.
func (s *Sealer) Seal(plaintext string) (string, error) { return Encrypt(plaintext, s.key) }

// Open decrypts a token.
func (s *Sealer) Open(token string) (string, error) { return Decrypt(token, s.key) }

// KeyFingerprint identifies the bound key in diagnostics.
func (s *Sealer) KeyFingerprint() string { return s.key.Fingerprint() }
