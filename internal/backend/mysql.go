// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/schema"
)

type mysqlDialect struct{}

func (mysqlDialect) Kind() Kind          { return MySQL }
func (mysqlDialect) DriverName() string  { return "mysql" }
func (mysqlDialect) DefaultPort() string { return "3306" }
func (mysqlDialect) ProbeQuery() string  { return "SELECT 1" }

// DSN delegates escaping to the driver's own Config formatter.
func (mysqlDialect) DSN(p Params) (string, error) {
	if err := validatePort(p.Port); err != nil {
		return "", err
	}
	if p.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	cfg := mysql.NewConfig()
	cfg.User = p.Username
	cfg.Passwd = p.Password.Reveal()
	cfg.Net = "tcp"
	cfg.Addr = hostPort(p.Host, p.Port)
	cfg.DBName = p.Database
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) ListTablesQuery() string {
	return `SELECT table_name FROM information_schema.tables ` +
		`WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ` +
		`ORDER BY table_name`
}

func (mysqlDialect) SampleQuery(quotedTable string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotedTable, limit)
}

func (mysqlDialect) BunDialect() schema.Dialect { return mysqldialect.New() }
