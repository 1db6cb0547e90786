package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pingcap/tipocket-sqllab/pkg/resulttable"
)

type countingChecker struct {
	calls *int
	err   error
}

func (c countingChecker) Check(_, _ *resulttable.Table) error {
	*c.calls++
	return c.err
}

func (countingChecker) Name() string { return "counting" }

func TestMultiCheckerStopsAtFirstFailure(t *testing.T) {
	var first, second, third int
	c := MultiChecker("multi",
		countingChecker{calls: &first},
		countingChecker{calls: &second, err: AssertionFailed("", "nope")},
		countingChecker{calls: &third},
	)
	err := c.Check(&resulttable.Table{}, &resulttable.Table{})
	assert.Equal(t, KindAssertion, KindOf(err))
	assert.Equal(t, []int{1, 1, 0}, []int{first, second, third})
	assert.Equal(t, "multi", c.Name())
	assert.NoError(t, NoopChecker{}.Check(nil, nil))
}

type fakeCase string

func (c fakeCase) Name() string       { return string(c) }
func (c fakeCase) SkipReason() string { return "" }

func TestRegisterCase(t *testing.T) {
	RegisterCase(fakeCase("core-test-b"))
	RegisterCase(fakeCase("core-test-a"))

	assert.Equal(t, fakeCase("core-test-a"), GetCase("core-test-a"))
	assert.Nil(t, GetCase("core-test-missing"))

	var names []string
	for _, c := range Cases() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"core-test-b", "core-test-a"}, names)

	assert.Panics(t, func() { RegisterCase(fakeCase("core-test-a")) })
}
