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

package resulttable

import (
	"fmt"
	"strings"

	"github.com/aryann/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// MismatchKind tells which part of two tables differs.
type MismatchKind int

// Mismatch kinds, in the order Compare checks them.
const (
	HeaderCount MismatchKind = iota
	RowCount
	HeaderCell
	BodyCell
)

func (k MismatchKind) String() string {
	switch k {
	case HeaderCount:
		return "header cell count"
	case RowCount:
		return "body row count"
	case HeaderCell:
		return "header cell"
	case BodyCell:
		return "body cell"
	default:
		return "unknown"
	}
}

const missingCell = "<missing>"

// Mismatch is the first difference between two tables.
type Mismatch struct {
	Kind MismatchKind
	// Row is the body row index, -1 for the header.
	Row      int
	Column   int
	Expected string
	Actual   string
	// Diff is a line diff of both tables, followed by a character diff of
	// the offending cell for cell mismatches.
	Diff string
}

func (m *Mismatch) String() string {
	switch m.Kind {
	case HeaderCount, RowCount:
		return fmt.Sprintf("%s differs: expected %s, got %s", m.Kind, m.Expected, m.Actual)
	case HeaderCell:
		return fmt.Sprintf("header cell %d differs: expected %q, got %q", m.Column, m.Expected, m.Actual)
	default:
		return fmt.Sprintf("cell (%d, %d) differs: expected %q, got %q", m.Row, m.Column, m.Expected, m.Actual)
	}
}

// CompareShape reports the first difference in header cell count or body
// row count, nil if both match.
func CompareShape(expected, actual *Table) *Mismatch {
	var m *Mismatch
	switch {
	case expected.ColumnCount() != actual.ColumnCount():
		m = &Mismatch{Kind: HeaderCount, Row: -1,
			Expected: fmt.Sprint(expected.ColumnCount()), Actual: fmt.Sprint(actual.ColumnCount())}
	case expected.RowCount() != actual.RowCount():
		m = &Mismatch{Kind: RowCount, Row: -1,
			Expected: fmt.Sprint(expected.RowCount()), Actual: fmt.Sprint(actual.RowCount())}
	default:
		return nil
	}
	m.Diff = LineDiff(expected, actual)
	return m
}

// Compare reports the first difference between expected and actual: shape
// first, then header cells, then body cells row by row. It returns nil when
// both tables hold the same cells.
func Compare(expected, actual *Table) *Mismatch {
	if m := CompareShape(expected, actual); m != nil {
		return m
	}
	if col, e, a, ok := firstDiff(expected.Header, actual.Header); ok {
		return &Mismatch{Kind: HeaderCell, Row: -1, Column: col, Expected: e, Actual: a,
			Diff: LineDiff(expected, actual) + "\n" + CellDiff(e, a)}
	}
	for i := range expected.Rows {
		if col, e, a, ok := firstDiff(expected.Rows[i], actual.Rows[i]); ok {
			return &Mismatch{Kind: BodyCell, Row: i, Column: col, Expected: e, Actual: a,
				Diff: LineDiff(expected, actual) + "\n" + CellDiff(e, a)}
		}
	}
	return nil
}

func firstDiff(expected, actual []string) (int, string, string, bool) {
	n := len(expected)
	if len(actual) > n {
		n = len(actual)
	}
	for i := 0; i < n; i++ {
		e, a := missingCell, missingCell
		if i < len(expected) {
			e = expected[i]
		}
		if i < len(actual) {
			a = actual[i]
		}
		if e != a || (i >= len(expected)) != (i >= len(actual)) {
			return i, e, a, true
		}
	}
	return 0, "", "", false
}

// LineDiff renders a row level diff, "-" lines only in expected and "+"
// lines only in actual.
func LineDiff(expected, actual *Table) string {
	records := difflib.Diff(expected.Lines(), actual.Lines())
	lines := make([]string, 0, len(records))
	for _, r := range records {
		switch r.Delta {
		case difflib.LeftOnly:
			lines = append(lines, "- "+r.Payload)
		case difflib.RightOnly:
			lines = append(lines, "+ "+r.Payload)
		default:
			lines = append(lines, "  "+r.Payload)
		}
	}
	return strings.Join(lines, "\n")
}

// CellDiff renders a character diff of two cell texts in word-diff style.
func CellDiff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(expected, actual, false))
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		}
	}
	return b.String()
}
