package core

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindAssertion, KindOf(AssertionFailed("", "expected %d columns", 4)))
	assert.Equal(t, KindWaitTimeout, KindOf(WaitTimeout("@%s", "sqlLabQuery")))
	assert.Equal(t, KindElementNotFound, KindOf(ElementNotFound("#js-sql-toolbar button")))
	assert.Equal(t, KindSetup, KindOf(errors.New("boom")))
	assert.Equal(t, KindSetup, KindOf(context.Canceled))
}

func TestKindSurvivesAnnotation(t *testing.T) {
	err := errors.Annotatef(WaitTimeout("@getTables"), "step %d", 3)
	assert.Equal(t, KindWaitTimeout, KindOf(err))
	assert.Contains(t, err.Error(), "step 3")
	assert.Contains(t, err.Error(), "wait-timeout: @getTables")
}

func TestSetupFailed(t *testing.T) {
	assert.NoError(t, SetupFailed(nil, "login"))

	err := SetupFailed(errors.New("connection refused"), "start browser")
	assert.Equal(t, KindSetup, KindOf(err))
	assert.Contains(t, err.Error(), "start browser: connection refused")

	// already classified failures keep their kind
	err = SetupFailed(ElementNotFound("#username"), "login")
	assert.Equal(t, KindElementNotFound, KindOf(err))
}

func TestFailureErrorWithDiff(t *testing.T) {
	f := &Failure{Kind: KindAssertion, Msg: "tables differ", Diff: "- a\n+ b\n"}
	assert.Equal(t, "assertion: tables differ\n\t- a\n\t+ b", f.Error())
}
