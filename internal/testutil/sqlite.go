// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds helpers shared by package tests. SQLiteDialect lets
// broker and query tests run real SQL without a database server.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/toeirei/allsqladmin/internal/backend"
)

// SQLite is the kind reported by SQLiteDialect.
const SQLite backend.Kind = "SQLite"

// SQLiteDialect is a backend.Dialect over modernc.org/sqlite. Params.Database
// is the database file path.
type SQLiteDialect struct{}

var _ backend.Dialect = SQLiteDialect{}

func (SQLiteDialect) Kind() backend.Kind  { return SQLite }
func (SQLiteDialect) DriverName() string  { return "sqlite" }
func (SQLiteDialect) DefaultPort() string { return "" }
func (SQLiteDialect) ProbeQuery() string  { return "SELECT 1" }

func (SQLiteDialect) DSN(p backend.Params) (string, error) {
	if p.Database == "" {
		return "", fmt.Errorf("database path is required")
	}
	return p.Database, nil
}

func (SQLiteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (SQLiteDialect) ListTablesQuery() string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
}

func (SQLiteDialect) SampleQuery(quotedTable string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotedTable, limit)
}

func (SQLiteDialect) BunDialect() schema.Dialect { return sqlitedialect.New() }

// SQLiteParams returns Params for a fresh database file under t.TempDir.
func SQLiteParams(t testing.TB) backend.Params {
	t.Helper()
	return backend.Params{Host: "local", Database: filepath.Join(t.TempDir(), "test.db")}
}

// UnreachableSQLiteParams returns Params whose database cannot be opened.
func UnreachableSQLiteParams(t testing.TB) backend.Params {
	t.Helper()
	return backend.Params{Host: "local", Database: filepath.Join(t.TempDir(), "missing", "dir", "test.db")}
}
