// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core wires the key vault, cipher, profile store, broker and query
// engine into one application context. Front ends hold an *App instead of
// reaching for package globals.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/allsqladmin/internal/backend"
	"github.com/toeirei/allsqladmin/internal/broker"
	"github.com/toeirei/allsqladmin/internal/config"
	"github.com/toeirei/allsqladmin/internal/crypt"
	"github.com/toeirei/allsqladmin/internal/fsutil"
	"github.com/toeirei/allsqladmin/internal/keyvault"
	"github.com/toeirei/allsqladmin/internal/logging"
	"github.com/toeirei/allsqladmin/internal/profile"
	"github.com/toeirei/allsqladmin/internal/query"
	"github.com/toeirei/allsqladmin/internal/security"
)

// App is the application context.
type App struct {
	Config   config.Config
	Sealer   *crypt.Sealer
	Profiles *profile.Store
	Broker   *broker.Broker
	Engine   *query.Engine

	// LoadWarning is set when the profile file existed but could not be
	// read. The store is then empty and usable.
	LoadWarning *profile.LoadWarning
}

// NewApp prepares the data directory, loads or creates the encryption key
// and loads the profile file. A *keyvault.KeyError is fatal; an unreadable
// profile file is not.
func NewApp(cfg config.Config) (*App, error) {
	if err := fsutil.EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("prepare data directory: %w", err)
	}
	key, err := keyvault.GetOrCreateKey(cfg.KeyPath())
	if err != nil {
		return nil, err
	}
	sealer := crypt.NewSealer(key)
	logging.Debugf("using key %s from %s", sealer.KeyFingerprint(), cfg.KeyPath())

	a := &App{
		Config:   cfg,
		Sealer:   sealer,
		Profiles: profile.NewStore(cfg.ProfilesPath(), sealer),
		Broker:   broker.New(broker.WithConnectTimeout(cfg.Timeouts.Connect)),
	}
	a.Engine = query.New(a.Broker, query.WithTimeout(cfg.Timeouts.Query))

	if err := a.Profiles.Reload(); err != nil {
		var w *profile.LoadWarning
		if !errors.As(err, &w) {
			return nil, err
		}
		logging.Warnf("%v", w)
		a.LoadWarning = w
	}
	return a, nil
}

// ProfileParams fills connection parameters from the named profile. When
// the stored password cannot be decrypted the params are still returned,
// with an empty password, together with the *crypt.DecryptionError so the
// caller can ask for the password.
func (a *App) ProfileParams(name string) (profile.Profile, backend.Params, error) {
	p, err := a.Profiles.Get(name)
	if err != nil {
		return profile.Profile{}, backend.Params{}, err
	}
	pw, err := a.Profiles.DecryptPassword(p)
	if err != nil {
		logging.Warnf("password of profile %q: %v", p.Name, err)
		return p, p.Params(nil), err
	}
	return p, p.Params(pw), nil
}

// PromptFunc asks the user for a password. cause says why the stored one
// could not be used.
type PromptFunc func(label string, cause error) (security.Secret, error)

// ConnectProfile opens a session for the named profile. A password that
// cannot be decrypted is requested through prompt; with a nil prompt the
// decryption error is returned.
func (a *App) ConnectProfile(ctx context.Context, name string, prompt PromptFunc) (*broker.Session, error) {
	p, params, err := a.ProfileParams(name)
	if err != nil {
		var de *crypt.DecryptionError
		if !errors.As(err, &de) || prompt == nil {
			return nil, err
		}
		pw, perr := prompt(p.Label(), err)
		if perr != nil {
			return nil, perr
		}
		params.Password = pw
	}
	return a.Broker.Open(ctx, p.Backend, params)
}

// Connect opens a session from manual parameters.
func (a *App) Connect(ctx context.Context, kind backend.Kind, params backend.Params) (*broker.Session, error) {
	return a.Broker.Open(ctx, kind, params)
}

// Close releases the current session, if any.
func (a *App) Close() error {
	return a.Broker.Close()
}
