// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package crypt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/toeirei/allsqladmin/internal/keyvault"
)

func mustKey(t *testing.T) keyvault.Key {
	t.Helper()
	k, err := keyvault.Generate()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return k
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := mustKey(t)
	inputs := []string{
		"a",
		"p@ss:word/with?url&chars",
		"senha com acentuação ✓",
		strings.Repeat("x", 4096),
	}
	for _, in := range inputs {
		token, err := Encrypt(in, key)
		if err != nil {
			t.Fatalf("encrypt %q: %v", in, err)
		}
		if strings.Contains(token, in) {
			t.Fatalf("token contains plaintext")
		}
		got, err := Decrypt(token, key)
		if err != nil {
			t.Fatalf("decrypt %q: %v", in, err)
		}
		if got != in {
			t.Fatalf("round trip mismatch: got %q want %q", got, in)
		}
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	key := mustKey(t)
	a, _ := Encrypt("same", key)
	b, _ := Encrypt("same", key)
	if a == b {
		t.Fatalf("two encryptions produced the same token")
	}
}

func TestDecrypt_TamperAnyByteFails(t *testing.T) {
	key := mustKey(t)
	token, err := Encrypt("secret-password", key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	for i := 0; i < len(token); i++ {
		b := []byte(token)
		b[i] ^= 0x01
		_, err := Decrypt(string(b), key)
		var de *DecryptionError
		if !errors.As(err, &de) {
			t.Fatalf("flipping byte %d: expected *DecryptionError, got %v", i, err)
		}
	}
}

func TestDecrypt_TamperRawBytesFailsAuth(t *testing.T) {
	key := mustKey(t)
	token, _ := Encrypt("secret-password", key)
	raw, err := encoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := headerSize; i < len(raw); i++ {
		b := bytes.Clone(raw)
		b[i] ^= 0x80
		_, err := Decrypt(encoding.EncodeToString(b), key)
		if !errors.Is(err, ErrAuth) {
			t.Fatalf("flipping raw byte %d: expected ErrAuth, got %v", i, err)
		}
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	k1, k2 := mustKey(t), mustKey(t)
	token, _ := Encrypt("s", k1)
	_, err := Decrypt(token, k2)
	var de *DecryptionError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecryptionError, got %v", err)
	}
	if !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	key := mustKey(t)
	cases := map[string]error{
		"":                         ErrMalformed,
		"!!!":                      ErrMalformed,
		"AQ":                       ErrMalformed,
		encoding.EncodeToString(append([]byte{9}, make([]byte, 60)...)): ErrVersion,
	}
	for in, want := range cases {
		_, err := Decrypt(in, key)
		if !errors.Is(err, want) {
			t.Fatalf("Decrypt(%q): expected %v, got %v", in, want, err)
		}
	}
}

func TestEncrypt_NonceFailure(t *testing.T) {
	prev := nonceReader
	nonceReader = bytes.NewReader(nil)
	defer func() { nonceReader = prev }()

	if _, err := Encrypt("x", mustKey(t)); err == nil {
		t.Fatalf("expected error when nonce source fails")
	}
}

func TestEncrypt_TokenLayout(t *testing.T) {
	key := mustKey(t)
	nonce := bytes.Repeat([]byte{0x42}, chacha20poly1305.NonceSizeX)
	prev := nonceReader
	nonceReader = bytes.NewReader(nonce)
	defer func() { nonceReader = prev }()

	token, err := Encrypt("hunter2", key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	raw, err := encoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := key.ID()
	header := append([]byte{version1}, id[:]...)
	if !bytes.Equal(raw[:headerSize], header) {
		t.Fatalf("header = %x, want %x", raw[:headerSize], header)
	}
	if !bytes.Equal(raw[headerSize:headerSize+len(nonce)], nonce) {
		t.Fatalf("nonce not stored after the header")
	}

	// The ciphertext opens with a plain AEAD using the header as associated data.
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		t.Fatalf("aead: %v", err)
	}
	plain, err := aead.Open(nil, nonce, raw[headerSize+len(nonce):], header)
	if err != nil {
		t.Fatalf("open with header as associated data: %v", err)
	}
	if string(plain) != "hunter2" {
		t.Fatalf("plaintext = %q", plain)
	}
	if _, err := aead.Open(nil, nonce, raw[headerSize+len(nonce):], nil); err == nil {
		t.Fatalf("header must be authenticated")
	}
}

func TestSealer(t *testing.T) {
	key := mustKey(t)
	s := NewSealer(key)
	token, err := s.Seal("pw")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	got, err := s.Open(token)
	if err != nil || got != "pw" {
		t.Fatalf("open: %q %v", got, err)
	}
	if s.KeyFingerprint() != key.Fingerprint() {
		t.Fatalf("fingerprint mismatch")
	}
}
