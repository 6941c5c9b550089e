// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package keyvault owns the symmetric key that protects stored passwords.
//
// The key is created once, on first use, and persisted base64url-encoded in
// a dedicated file. An existing key file is never regenerated: deleting it
// makes every stored password permanently undecryptable.
package keyvault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/toeirei/allsqladmin/internal/fsutil"
	"github.com/toeirei/allsqladmin/internal/logging"
)

// Size is the key length in bytes (XChaCha20-Poly1305).
const Size = 32

// FileName is the default key file name inside the data directory.
const FileName = "secret.key"

var encoding = base64.URLEncoding

// ErrInvalidKey is the reason carried by a KeyError for undecodable or
// wrongly sized key material.
var ErrInvalidKey = errors.New("invalid key material")

// KeyError reports unreadable or malformed key material. It is fatal for
// every encryption-dependent operation.
type KeyError struct {
	Path string
	Err  error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key file %s: %v", e.Path, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// Key is raw symmetric key material.
type Key [Size]byte

// Encode returns the storage encoding of the key.
func (k Key) Encode() string {
	return encoding.EncodeToString(k[:])
}

// Fingerprint returns a short, non-secret identifier for the key, suitable
// for diagnostics and for tagging ciphertexts.
func (k Key) Fingerprint() string {
	sum := sha256.Sum256(k[:])
	return hex.EncodeToString(sum[:4])
}

// ID returns the first four bytes of the key's SHA-256 digest.
func (k Key) ID() [4]byte {
	sum := sha256.Sum256(k[:])
	var id [4]byte
	copy(id[:], sum[:4])
	return id
}

// String keeps key material out of logs.
func (k Key) String() string { return "key:" + k.Fingerprint() }

// randReader is the entropy source; tests may replace it.
var randReader io.Reader = rand.Reader

// Generate returns fresh random key material.
func Generate() (Key, error) {
	var k Key
	if _, err := io.ReadFull(randReader, k[:]); err != nil {
		return Key{}, fmt.Errorf("generate key: %w", err)
	}
	return k, nil
}

// Decode parses the storage encoding. Surrounding whitespace is ignored so a
// hand-edited file with a trailing newline still loads.
func Decode(s string) (Key, error) {
	raw, err := encoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(raw) != Size {
		return Key{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, Size, len(raw))
	}
	var k Key
	copy(k[:], raw)
	return k, nil
}

// GetOrCreateKey loads the key stored at path, creating it first when the
// file does not exist. A present but undecodable file yields a *KeyError and
// is left untouched.
func GetOrCreateKey(path string) (Key, error) {
	if k, err := load(path); err == nil {
		return k, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Key{}, err
	}

	var key Key
	err := fsutil.WithLock(path, func() error {
		// Another process may have created the key while we waited.
		k, err := load(path)
		if err == nil {
			key = k
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		k, err = Generate()
		if err != nil {
			return &KeyError{Path: path, Err: err}
		}
		if err := fsutil.WriteFileAtomic(path, []byte(k.Encode()+"\n"), 0o600); err != nil {
			return &KeyError{Path: path, Err: err}
		}
		logging.Infof("created new encryption key %s at %s", k.Fingerprint(), path)
		key = k
		return nil
	})
	if err != nil {
		var ke *KeyError
		if errors.As(err, &ke) {
			return Key{}, err
		}
		return Key{}, &KeyError{Path: path, Err: err}
	}
	return key, nil
}

// load reads an existing key. A missing file is returned as fs.ErrNotExist
// unwrapped so callers can branch on it.
func load(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Key{}, err
		}
		return Key{}, &KeyError{Path: path, Err: err}
	}
	k, err := Decode(string(data))
	if err != nil {
		return Key{}, &KeyError{Path: path, Err: err}
	}
	return k, nil
}
