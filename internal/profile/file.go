// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/toeirei/allsqladmin/internal/backend"
	"github.com/toeirei/allsqladmin/internal/fsutil"
	"github.com/toeirei/allsqladmin/internal/logging"
)

// FileName is the default profile file name inside the data directory.
const FileName = "db_gui_favorites.json"

// LoadWarning reports a profile file that could not be read or parsed. The
// load still succeeds with an empty collection; the caller decides how to
// surface the warning.
type LoadWarning struct {
	Path string
	Err  error
}

func (w *LoadWarning) Error() string {
	return fmt.Sprintf("profiles in %s could not be loaded: %v", w.Path, w.Err)
}

func (w *LoadWarning) Unwrap() error { return w.Err }

// record fixes the on-disk field order.
type record struct {
	Name     string `json:"name"`
	Backend  string `json:"backend"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Load reads the profile file at path. A missing file is an empty store. An
// unreadable or corrupt file yields an empty collection and a *LoadWarning.
func Load(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Profile{}, nil
		}
		return []Profile{}, &LoadWarning{Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Profile{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return []Profile{}, &LoadWarning{Path: path, Err: err}
	}

	out := make([]Profile, 0, len(raw))
	for i, m := range raw {
		p := Profile{
			Name:     field(m, "name"),
			Host:     field(m, "host"),
			Port:     field(m, "port"),
			Database: field(m, "database", "db_name"),
			Username: field(m, "username"),
			Password: field(m, "password"),
		}
		p.Backend = backend.DefaultKind
		if name := field(m, "backend", "db_type"); name != "" {
			kind, err := backend.ParseKind(name)
			if err != nil {
				logging.Warnf("profile %d (%q) in %s: %v; using %s", i, p.Name, path, err, backend.DefaultKind)
			} else {
				p.Backend = kind
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// field returns the first present key as a string. Numbers are accepted for
// hand-edited files (e.g. "port": 5432); any other type reads as "".
func field(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			return t
		case json.Number:
			return t.String()
		default:
			return ""
		}
	}
	return ""
}

// Save replaces the file at path with profiles, atomically and under the
// store's file lock.
func Save(path string, profiles []Profile) error {
	recs := make([]record, 0, len(profiles))
	for _, p := range profiles {
		recs = append(recs, record{
			Name:     p.Name,
			Backend:  string(p.Backend),
			Host:     p.Host,
			Port:     p.Port,
			Database: p.Database,
			Username: p.Username,
			Password: p.Password,
		})
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	data = append(data, '\n')
	return fsutil.WithLock(path, func() error {
		return fsutil.WriteFileAtomic(path, data, 0o600)
	})
}
