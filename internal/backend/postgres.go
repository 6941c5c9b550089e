// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/schema"
)

type postgresDialect struct{}

func (postgresDialect) Kind() Kind          { return Postgres }
func (postgresDialect) DriverName() string  { return "pgx" }
func (postgresDialect) DefaultPort() string { return "5432" }
func (postgresDialect) ProbeQuery() string  { return "SELECT 1" }

// DSN builds a postgres:// URL so credentials with reserved characters are
// percent-encoded rather than breaking a key=value string.
func (postgresDialect) DSN(p Params) (string, error) {
	if err := validatePort(p.Port); err != nil {
		return "", err
	}
	if p.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   hostPort(p.Host, p.Port),
		Path:   "/" + p.Database,
	}
	if p.Username != "" {
		if p.Password.IsEmpty() {
			u.User = url.User(p.Username)
		} else {
			u.User = url.UserPassword(p.Username, p.Password.Reveal())
		}
	}
	return u.String(), nil
}

func (postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgresDialect) ListTablesQuery() string {
	return `SELECT table_name FROM information_schema.tables ` +
		`WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ` +
		`ORDER BY table_name`
}

func (postgresDialect) SampleQuery(quotedTable string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotedTable, limit)
}

func (postgresDialect) BunDialect() schema.Dialect { return pgdialect.New() }
