// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/allsqladmin/internal/broker"
	"github.com/toeirei/allsqladmin/internal/i18n"
	"github.com/toeirei/allsqladmin/internal/profile"
	"github.com/toeirei/allsqladmin/internal/query"
)

type cliEnv struct {
	dataDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("ALLSQLADMIN_LANGUAGE", "en")
	i18n.Init("en")
	return &cliEnv{dataDir: filepath.Join(tmp, "data")}
}

// run executes one command line and returns stdout.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-dir", e.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestProfilesLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "profiles", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No profiles stored.") {
		t.Fatalf("list output = %q", out)
	}

	out, err = env.run(t, "s3cret\n", "profiles", "add",
		"--name", "prod", "--backend", "mysql", "--host", "db.local",
		"--database", "shop", "--user", "admin", "--password-stdin")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, `Profile "prod" saved.`) {
		t.Fatalf("add output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(env.dataDir, profile.FileName))
	if err != nil {
		t.Fatalf("profile file: %v", err)
	}
	if strings.Contains(string(data), "s3cret") {
		t.Fatalf("plaintext password on disk")
	}
	if !strings.Contains(string(data), `"port": "3306"`) {
		t.Fatalf("default port not applied:\n%s", data)
	}

	out, err = env.run(t, "", "profiles", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"prod", "MySQL", "db.local", "shop", "********"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}

	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error { copied = s; return nil }
	defer func() { clipboardWrite = orig }()
	out, err = env.run(t, "", "profiles", "show", "prod", "--copy")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if copied != "s3cret" {
		t.Fatalf("clipboard got %q", copied)
	}
	if !strings.Contains(out, "prod (MySQL - db.local/shop)") || strings.Contains(out, "s3cret") {
		t.Fatalf("show output = %q", out)
	}

	if _, err := env.run(t, "", "profiles", "edit", "prod", "--host", "db2.local"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	copied = ""
	if _, err := env.run(t, "", "profiles", "show", "prod", "--copy"); err != nil {
		t.Fatalf("show after edit: %v", err)
	}
	if copied != "s3cret" {
		t.Fatalf("edit must keep the password, clipboard got %q", copied)
	}

	if _, err := env.run(t, "", "profiles", "edit", "prod", "--clear-password"); err != nil {
		t.Fatalf("edit --clear-password: %v", err)
	}
	out, _ = env.run(t, "", "profiles", "show", "prod", "--copy")
	if !strings.Contains(out, "has no stored password") {
		t.Fatalf("show output = %q", out)
	}

	if _, err := env.run(t, "", "profiles", "remove", "prod"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := env.run(t, "", "profiles", "remove", "prod"); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("second remove: expected ErrNotFound, got %v", err)
	}
}

func TestProfilesEdit_BackendChangeResetsPort(t *testing.T) {
	env := newCLIEnv(t)
	readFile := func() string {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(env.dataDir, profile.FileName))
		if err != nil {
			t.Fatalf("profile file: %v", err)
		}
		return string(data)
	}

	if _, err := env.run(t, "", "profiles", "add",
		"--name", "pg", "--backend", "postgresql", "--host", "db.local", "--database", "app"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if data := readFile(); !strings.Contains(data, `"port": "5432"`) {
		t.Fatalf("default port not applied:\n%s", data)
	}

	if _, err := env.run(t, "", "profiles", "edit", "pg", "--backend", "mysql"); err != nil {
		t.Fatalf("edit --backend: %v", err)
	}
	if data := readFile(); !strings.Contains(data, `"port": "3306"`) {
		t.Fatalf("port not reset for new backend:\n%s", data)
	}

	if _, err := env.run(t, "", "profiles", "edit", "pg", "--backend", "sql server", "--port", "14330"); err != nil {
		t.Fatalf("edit --backend --port: %v", err)
	}
	if data := readFile(); !strings.Contains(data, `"port": "14330"`) {
		t.Fatalf("explicit port not kept:\n%s", data)
	}

	if _, err := env.run(t, "", "profiles", "edit", "pg", "--host", "db2.local"); err != nil {
		t.Fatalf("edit --host: %v", err)
	}
	if data := readFile(); !strings.Contains(data, `"port": "14330"`) {
		t.Fatalf("port changed by unrelated edit:\n%s", data)
	}
}

func TestProfilesAdd_ValidationError(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "", "profiles", "add", "--name", "x")
	var ve *profile.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExec_RequiresTarget(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "", "exec", "select 1")
	if err == nil || !strings.Contains(err.Error(), "--profile") {
		t.Fatalf("expected missing target error, got %v", err)
	}
}

func TestTables_UnreachableServer(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "pw\n", "tables",
		"--backend", "postgres", "--host", "127.0.0.1", "--port", "1",
		"--database", "app", "--user", "u", "--password-stdin")
	var ce *broker.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "allsqladmin.yaml")

	out, err := env.run(t, "", "config", "init", "--path", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "data_dir: "+env.dataDir) {
		t.Fatalf("config file =\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(env.dataDir, "secret.key")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("config init must not create the key: %v", err)
	}

	if _, err := env.run(t, "", "config", "init", "--path", path); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := env.run(t, "", "config", "init", "--path", path, "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestRenderResult(t *testing.T) {
	i18n.Init("en")
	var buf bytes.Buffer
	renderResult(&buf, &query.TabularResult{
		Columns: []string{"id", "note"},
		Rows: [][]query.Value{
			{{V: int64(1), Valid: true}, {}},
		},
	})
	out := buf.String()
	for _, want := range []string{"id", "note", "NULL", "1 row(s)."} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	renderResult(&buf, query.ExecutionSummary{RowsAffected: 4, RowsAffectedKnown: true})
	if strings.TrimSpace(buf.String()) != "4 row(s) affected." {
		t.Fatalf("summary = %q", buf.String())
	}
	buf.Reset()
	renderResult(&buf, query.ExecutionSummary{})
	if strings.TrimSpace(buf.String()) != "Statement executed." {
		t.Fatalf("summary = %q", buf.String())
	}
}
