package check

import (
	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/resulttable"
)

// ShapeChecker fails when two tables differ in header cell count or body
// row count.
type ShapeChecker struct{}

// Check implements core.Checker.
func (ShapeChecker) Check(expected, actual *resulttable.Table) error {
	if m := resulttable.CompareShape(expected, actual); m != nil {
		return core.AssertionFailed(m.Diff, "%s", m)
	}
	return nil
}

// Name implements core.Checker.
func (ShapeChecker) Name() string {
	return "ShapeChecker"
}

// CellChecker fails on the first cell whose text differs.
type CellChecker struct{}

// Check implements core.Checker.
func (CellChecker) Check(expected, actual *resulttable.Table) error {
	if m := resulttable.Compare(expected, actual); m != nil {
		return core.AssertionFailed(m.Diff, "%s", m)
	}
	return nil
}

// Name implements core.Checker.
func (CellChecker) Name() string {
	return "CellChecker"
}

// TableChecker is the default checker for two captures of the same query.
func TableChecker() core.Checker {
	return core.MultiChecker("TableChecker", ShapeChecker{}, CellChecker{})
}
