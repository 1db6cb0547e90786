// Package sqlshape derives the expected shape of a query result from the
// query text.
package sqlshape

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"

	// literal values in LIMIT need a value expression driver
	_ "github.com/pingcap/parser/test_driver"
)

// Shape is what a SELECT statement says about its result.
type Shape struct {
	// Columns is the number of select fields. It is the column count only
	// when Wildcard is false.
	Columns  int
	Wildcard bool
	// Limit is the LIMIT row count, valid when HasLimit is set.
	Limit    uint64
	HasLimit bool
}

// Analyze parses a single SELECT statement.
func Analyze(sql string) (Shape, error) {
	stmt, err := parser.New().ParseOneStmt(sql, "", "")
	if err != nil {
		return Shape{}, errors.Annotatef(err, "parse %q", sql)
	}
	sel, ok := stmt.(*ast.SelectStmt)
	if !ok {
		return Shape{}, errors.NotSupportedf("%T statement", stmt)
	}

	var shape Shape
	if sel.Fields != nil {
		for _, f := range sel.Fields.Fields {
			if f.WildCard != nil {
				shape.Wildcard = true
			}
			shape.Columns++
		}
	}
	if sel.Limit != nil && sel.Limit.Count != nil {
		v, ok := sel.Limit.Count.(ast.ValueExpr)
		if !ok {
			return shape, errors.NotSupportedf("non literal LIMIT")
		}
		switch n := v.GetValue().(type) {
		case uint64:
			shape.Limit = n
		case int64:
			if n < 0 {
				return shape, errors.NotValidf("LIMIT %d", n)
			}
			shape.Limit = uint64(n)
		default:
			return shape, errors.NotSupportedf("LIMIT of type %T", n)
		}
		shape.HasLimit = true
	}
	return shape, nil
}

// Expect returns the exact (columns, rows) a query must render, failing when
// either is not fixed by the query text.
func Expect(sql string) (int, int, error) {
	shape, err := Analyze(sql)
	if err != nil {
		return 0, 0, errors.Trace(err)
	}
	if shape.Wildcard {
		return 0, 0, errors.Errorf("column count of %q depends on the schema", sql)
	}
	if !shape.HasLimit {
		return 0, 0, errors.Errorf("row count of %q is unbounded", sql)
	}
	return shape.Columns, int(shape.Limit), nil
}

func (s Shape) String() string {
	cols := fmt.Sprint(s.Columns)
	if s.Wildcard {
		cols += "+*"
	}
	if !s.HasLimit {
		return fmt.Sprintf("shape[columns=%s]", cols)
	}
	return fmt.Sprintf("shape[columns=%s,limit=%d]", cols, s.Limit)
}
