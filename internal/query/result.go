// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package query

import (
	"fmt"
	"time"
)

// Value is one result cell. Null cells have Valid == false.
type Value struct {
	V     any
	Valid bool
}

// String renders the cell for display; nulls print as NULL.
func (v Value) String() string {
	if !v.Valid {
		return "NULL"
	}
	switch t := v.V.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

// newValue normalizes a scanned driver value. Byte slices become strings so
// textual columns from every driver read alike.
func newValue(src any) Value {
	switch t := src.(type) {
	case nil:
		return Value{}
	case []byte:
		return Value{V: string(t), Valid: true}
	default:
		return Value{V: t, Valid: true}
	}
}

// Result is either a *TabularResult or an ExecutionSummary.
type Result interface {
	isResult()
}

// TabularResult holds the rows of a row-returning statement.
type TabularResult struct {
	Columns []string
	Rows    [][]Value
	// Truncated is set when the row cap cut the result short.
	Truncated bool
}

func (*TabularResult) isResult() {}

// ExecutionSummary describes a statement that returns no rows.
type ExecutionSummary struct {
	RowsAffected int64
	// RowsAffectedKnown is false when the driver cannot report a count.
	RowsAffectedKnown bool
}

func (ExecutionSummary) isResult() {}
