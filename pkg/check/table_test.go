package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/resulttable"
)

func table(rows ...[]string) *resulttable.Table {
	return &resulttable.Table{Header: []string{"name", "num"}, Rows: rows}
}

func TestTableChecker(t *testing.T) {
	c := TableChecker()
	assert.Equal(t, "TableChecker", c.Name())
	assert.NoError(t, c.Check(table([]string{"Aaron", "369"}), table([]string{"Aaron", "369"})))

	err := c.Check(table([]string{"Aaron", "369"}), table())
	require.Error(t, err)
	assert.Equal(t, core.KindAssertion, core.KindOf(err))
	assert.Contains(t, err.Error(), "body row count differs: expected 1, got 0")

	err = c.Check(table([]string{"Aaron", "369"}), table([]string{"Aaron", "370"}))
	require.Error(t, err)
	f, ok := core.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, core.KindAssertion, f.Kind)
	assert.Contains(t, f.Diff, "- Aaron\t369")
	assert.Contains(t, f.Diff, "+ Aaron\t370")
}

func TestShapeCheckerIgnoresCells(t *testing.T) {
	assert.NoError(t, ShapeChecker{}.Check(table([]string{"Aaron", "369"}), table([]string{"Zoe", "1"})))
	assert.Error(t, CellChecker{}.Check(table([]string{"Aaron", "369"}), table([]string{"Zoe", "1"})))
}
