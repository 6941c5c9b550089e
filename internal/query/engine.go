// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package query runs introspection and ad-hoc statements against the
// broker's current session.
package query

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/toeirei/allsqladmin/internal/broker"
	"github.com/toeirei/allsqladmin/internal/logging"
)

const (
	// DefaultSampleLimit is the row count used by SampleRows when no
	// positive limit is given.
	DefaultSampleLimit = 100
	// MaxRows caps the rows materialized for an ad-hoc SELECT.
	MaxRows = 1000
)

// Engine executes statements through a Broker. It holds no connection of
// its own.
type Engine struct {
	broker  *broker.Broker
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each operation when the caller's context has no
// deadline. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// New returns an Engine bound to b.
func New(b *broker.Broker, opts ...Option) *Engine {
	e := &Engine{broker: b}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// ListTables returns the base table names of the current schema in the order
// the backend reports them.
func (e *Engine) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var names []string
	err := e.broker.Do(ctx, func(ctx context.Context, s *broker.Session) error {
		return s.DB().NewRaw(s.Dialect().ListTablesQuery()).Scan(ctx, &names)
	})
	if err != nil {
		if errors.Is(err, broker.ErrNotConnected) {
			return nil, err
		}
		return nil, &IntrospectionError{Err: err}
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// SampleRows returns at most limit rows of table. limit <= 0 selects
// DefaultSampleLimit. The table name is quoted as a single identifier.
func (e *Engine) SampleRows(ctx context.Context, table string, limit int) (*TabularResult, error) {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var (
		res  *TabularResult
		stmt string
	)
	err := e.broker.Do(ctx, func(ctx context.Context, s *broker.Session) error {
		d := s.Dialect()
		stmt = d.SampleQuery(d.QuoteIdent(table), limit)
		rows, err := s.DB().DB.QueryContext(ctx, stmt)
		if err != nil {
			return err
		}
		defer rows.Close()
		res, err = collect(rows, limit)
		return err
	})
	if err != nil {
		if errors.Is(err, broker.ErrNotConnected) {
			return nil, err
		}
		return nil, &QueryError{Statement: stmt, Err: err}
	}
	return res, nil
}

// Execute runs one statement. Statements whose first keyword is SELECT
// (case-insensitive) return a *TabularResult capped at MaxRows; anything
// else returns an ExecutionSummary. The classification only looks at the
// leading keyword, so a SELECT behind a comment or a WITH clause is run as a
// non-query statement.
func (e *Engine) Execute(ctx context.Context, statement string) (Result, error) {
	stmt := strings.TrimSpace(statement)
	if stmt == "" {
		return nil, &QueryError{Err: ErrEmptyStatement}
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var res Result
	err := e.broker.Do(ctx, func(ctx context.Context, s *broker.Session) error {
		// User statements go to database/sql directly so that bun's
		// placeholder formatting never touches them.
		db := s.DB().DB
		if IsSelect(stmt) {
			rows, err := db.QueryContext(ctx, stmt)
			if err != nil {
				return err
			}
			defer rows.Close()
			tab, err := collect(rows, MaxRows)
			if err != nil {
				return err
			}
			if tab.Truncated {
				logging.Infof("result truncated to %d rows", MaxRows)
			}
			res = tab
			return nil
		}
		r, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return err
		}
		sum := ExecutionSummary{}
		if n, err := r.RowsAffected(); err == nil {
			sum.RowsAffected = n
			sum.RowsAffectedKnown = true
		}
		res = sum
		return nil
	})
	if err != nil {
		if errors.Is(err, broker.ErrNotConnected) {
			return nil, err
		}
		return nil, &QueryError{Statement: stmt, Err: err}
	}
	return res, nil
}

// IsSelect reports whether stmt starts with the SELECT keyword.
func IsSelect(stmt string) bool {
	s := strings.TrimSpace(stmt)
	return len(s) >= 6 && strings.EqualFold(s[:6], "select")
}

// collect reads up to limit rows. One extra Next call detects truncation.
func collect(rows *sql.Rows, limit int) (*TabularResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &TabularResult{Columns: cols, Rows: [][]Value{}}
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if len(res.Rows) == limit {
			res.Truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]Value, len(cols))
		for i, v := range raw {
			row[i] = newValue(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
