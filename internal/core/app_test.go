// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/toeirei/allsqladmin/internal/backend"
	"github.com/toeirei/allsqladmin/internal/config"
	"github.com/toeirei/allsqladmin/internal/crypt"
	"github.com/toeirei/allsqladmin/internal/keyvault"
	"github.com/toeirei/allsqladmin/internal/profile"
	"github.com/toeirei/allsqladmin/internal/security"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	c := config.Default()
	c.DataDir = filepath.Join(t.TempDir(), "data")
	return c
}

func testProfile(name string) profile.Profile {
	return profile.Profile{
		Name: name, Backend: backend.Postgres, Host: "127.0.0.1", Port: "1",
		Database: "app", Username: "u",
	}
}

func TestNewApp_CreatesKeyAndEmptyStore(t *testing.T) {
	c := testConfig(t)
	a, err := NewApp(c)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer a.Close()

	if _, err := os.Stat(c.KeyPath()); err != nil {
		t.Fatalf("key file not created: %v", err)
	}
	if len(a.Profiles.List()) != 0 || a.LoadWarning != nil {
		t.Fatalf("expected empty store without warning")
	}
	if a.Broker.Connected() {
		t.Fatalf("app must start disconnected")
	}
}

func TestNewApp_KeyErrorIsFatal(t *testing.T) {
	c := testConfig(t)
	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.KeyPath(), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewApp(c)
	var ke *keyvault.KeyError
	if !errors.As(err, &ke) {
		t.Fatalf("expected KeyError, got %v", err)
	}
}

func TestNewApp_CorruptProfilesIsWarning(t *testing.T) {
	c := testConfig(t)
	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.ProfilesPath(), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	a, err := NewApp(c)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if a.LoadWarning == nil || a.LoadWarning.Path != c.ProfilesPath() {
		t.Fatalf("expected load warning, got %+v", a.LoadWarning)
	}
}

func TestProfileParams_DecryptsPassword(t *testing.T) {
	a, err := NewApp(testConfig(t))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if err := a.Profiles.Add(testProfile("p"), security.FromString("s3cret")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	p, params, err := a.ProfileParams("p")
	if err != nil {
		t.Fatalf("ProfileParams: %v", err)
	}
	if p.Name != "p" || params.Host != "127.0.0.1" || params.Password.Reveal() != "s3cret" {
		t.Fatalf("params = %+v", params)
	}
	if _, _, err := a.ProfileParams("missing"); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileParams_WrongKeyLeavesPasswordEmpty(t *testing.T) {
	c := testConfig(t)
	a, err := NewApp(c)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if err := a.Profiles.Add(testProfile("p"), security.FromString("s3cret")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Same profile file, different key.
	c2 := c
	c2.KeyFile = filepath.Join(t.TempDir(), "other.key")
	b, err := NewApp(c2)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	_, params, err := b.ProfileParams("p")
	var de *crypt.DecryptionError
	if !errors.As(err, &de) || !errors.Is(err, crypt.ErrKeyMismatch) {
		t.Fatalf("expected key mismatch, got %v", err)
	}
	if !params.Password.IsEmpty() || params.Host != "127.0.0.1" {
		t.Fatalf("params = %+v", params)
	}
}

func TestConnectProfile_PromptsOnDecryptFailure(t *testing.T) {
	c := testConfig(t)
	a, _ := NewApp(c)
	if err := a.Profiles.Add(testProfile("p"), security.FromString("pw")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	c2 := c
	c2.KeyFile = filepath.Join(t.TempDir(), "other.key")
	b, err := NewApp(c2)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	if _, err := b.ConnectProfile(context.Background(), "p", nil); !errors.Is(err, crypt.ErrKeyMismatch) {
		t.Fatalf("without prompt: %v", err)
	}

	prompted := ""
	promptErr := errors.New("cancelled")
	_, err = b.ConnectProfile(context.Background(), "p", func(label string, cause error) (security.Secret, error) {
		if !errors.Is(cause, crypt.ErrKeyMismatch) {
			t.Errorf("cause = %v", cause)
		}
		prompted = label
		return nil, promptErr
	})
	if !errors.Is(err, promptErr) {
		t.Fatalf("expected prompt error, got %v", err)
	}
	if prompted == "" {
		t.Fatalf("prompt was not called")
	}
}
