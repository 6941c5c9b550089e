// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package profile persists named connection profiles ("favorites").
//
// Only the password field is sensitive. It is sealed before it reaches the
// in-memory collection, so the collection and the file always carry
// ciphertext or the empty marker, never plaintext.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/allsqladmin/internal/backend"
	"github.com/toeirei/allsqladmin/internal/security"
)

// Profile is one stored set of connection parameters.
type Profile struct {
	Name     string
	Backend  backend.Kind
	Host     string
	Port     string
	Database string
	Username string
	// Password is a sealed token, or "" when the profile has no password.
	Password string
}

// HasPassword reports whether a sealed password is stored.
func (p Profile) HasPassword() bool { return p.Password != "" }

// Label is the one-line description shown in profile lists.
func (p Profile) Label() string {
	return fmt.Sprintf("%s (%s - %s/%s)", p.Name, p.Backend, p.Host, p.Database)
}

// Params converts the profile into broker input using an already decrypted
// password.
func (p Profile) Params(password security.Secret) backend.Params {
	return backend.Params{
		Host:     p.Host,
		Port:     p.Port,
		Database: p.Database,
		Username: p.Username,
		Password: password,
	}
}

// Errors returned by Store operations.
var (
	ErrNotFound      = errors.New("profile not found")
	ErrDuplicateName = errors.New("a profile with this name already exists")
	ErrNoSealer      = errors.New("no encryption key configured")
)

// ValidationError lists the required fields that were empty. It is returned
// before any I/O takes place.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Validate checks the required fields: name, host, port and database.
func Validate(p Profile) error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(p.Port) == "" {
		missing = append(missing, "port")
	}
	if strings.TrimSpace(p.Database) == "" {
		missing = append(missing, "database")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if _, err := backend.Lookup(p.Backend); err != nil {
		return err
	}
	return nil
}
