// Copyright 2021 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package resulttable captures a rendered SqlLab result grid as plain text
// cells and compares two captures.
package resulttable

import (
	"strings"
)

// Table is a snapshot of a rendered result grid.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ColumnCount returns the number of header cells.
func (t *Table) ColumnCount() int {
	return len(t.Header)
}

// RowCount returns the number of body rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Lines renders the header and every row as one tab separated line each.
func (t *Table) Lines() []string {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return lines
}

func (t *Table) String() string {
	return strings.Join(t.Lines(), "\n")
}
