// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/toeirei/allsqladmin/internal/i18n"
	"github.com/toeirei/allsqladmin/internal/query"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// renderTable writes headers and rows as a bordered table.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.String())
}

// renderResult prints either result variant.
func renderResult(w io.Writer, res query.Result) {
	switch r := res.(type) {
	case *query.TabularResult:
		rows := make([][]string, 0, len(r.Rows))
		for _, row := range r.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = v.String()
			}
			rows = append(rows, cells)
		}
		renderTable(w, r.Columns, rows)
		fmt.Fprintln(w, i18n.T("exec.row_count", len(r.Rows)))
		if r.Truncated {
			fmt.Fprintln(w, i18n.T("exec.truncated", query.MaxRows))
		}
	case query.ExecutionSummary:
		if r.RowsAffectedKnown {
			fmt.Fprintln(w, i18n.T("exec.rows_affected", r.RowsAffected))
		} else {
			fmt.Fprintln(w, i18n.T("exec.rows_affected_unknown"))
		}
	}
}
