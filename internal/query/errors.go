// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package query

import (
	"errors"
	"fmt"
)

// ErrEmptyStatement is carried by a QueryError for blank input.
var ErrEmptyStatement = errors.New("empty statement")

// IntrospectionError reports a failed table listing.
type IntrospectionError struct {
	Err error
}

func (e *IntrospectionError) Error() string { return "list tables: " + e.Err.Error() }

func (e *IntrospectionError) Unwrap() error { return e.Err }

// QueryError reports a statement rejected by the backend, or blank input.
type QueryError struct {
	Statement string
	Err       error
}

func (e *QueryError) Error() string {
	if e.Statement == "" {
		return "query: " + e.Err.Error()
	}
	return fmt.Sprintf("query %q: %v", abbreviate(e.Statement, 60), e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
