// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backend describes the supported database families. Each family is
// a Dialect: it knows its driver, how to encode connection parameters into a
// DSN, how to quote identifiers and which statements to use for the liveness
// probe, table listing and bounded sampling. Callers never branch on the
// backend kind themselves.
package backend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun/schema"

	"github.com/toeirei/allsqladmin/internal/security"
)

// Kind names a backend family. The string value is what the profile file
// stores.
type Kind string

const (
	Postgres  Kind = "PostgreSQL"
	SQLServer Kind = "SQL Server"
	MySQL     Kind = "MySQL"
)

// DefaultKind is used when a stored profile carries no backend.
const DefaultKind = Postgres

// ErrUnsupported is returned for backend names outside the supported set.
var ErrUnsupported = errors.New("unsupported backend")

func (k Kind) String() string { return string(k) }

// Params are the discrete connection fields a DSN is built from.
type Params struct {
	Host     string
	Port     string
	Database string
	Username string
	Password security.Secret
}

// Dialect is the per-backend capability set.
type Dialect interface {
	Kind() Kind
	// DriverName is the database/sql driver registered for this backend.
	DriverName() string
	// DefaultPort is the conventional server port.
	DefaultPort() string
	// DSN encodes p for the driver.
	DSN(p Params) (string, error)
	// QuoteIdent quotes a single identifier, escaping embedded quote chars.
	QuoteIdent(name string) string
	// ProbeQuery is a trivial round-trip statement.
	ProbeQuery() string
	// ListTablesQuery returns base table names of the current schema.
	ListTablesQuery() string
	// SampleQuery selects at most limit rows from an already quoted table.
	SampleQuery(quotedTable string, limit int) string
	// BunDialect is the bun dialect used to wrap the connection.
	BunDialect() schema.Dialect
}

var ordered = []Dialect{postgresDialect{}, sqlServerDialect{}, mysqlDialect{}}

// Kinds lists the supported backends in their canonical order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(ordered))
	for _, d := range ordered {
		out = append(out, d.Kind())
	}
	return out
}

// Lookup returns the dialect for kind.
func Lookup(kind Kind) (Dialect, error) {
	for _, d := range ordered {
		if d.Kind() == kind {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, string(kind))
}

// ParseKind accepts the display names as well as the driver aliases commonly
// used in DSNs and config files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgresql", "postgres", "pg", "pgx":
		return Postgres, nil
	case "sql server", "sqlserver", "mssql":
		return SQLServer, nil
	case "mysql", "mariadb":
		return MySQL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
	}
}

// validatePort checks the port is a TCP port number. An empty port is left
// to the driver default.
func validatePort(port string) error {
	if port == "" {
		return nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

// hostPort joins host and port, tolerating an empty port.
func hostPort(host, port string) string {
	if port == "" {
		return host
	}
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	return host + ":" + port
}
