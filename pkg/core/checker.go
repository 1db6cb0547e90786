package core

import (
	"github.com/pingcap/tipocket-sqllab/pkg/resulttable"
)

// Checker checks a captured result table against an expected one.
type Checker interface {
	// Check returns an assertion failure if actual does not satisfy expected.
	Check(expected, actual *resulttable.Table) error

	// Name returns the unique name for the checker.
	Name() string
}

// NoopChecker is a noop checker.
type NoopChecker struct{}

// Check impls Checker.
func (NoopChecker) Check(expected, actual *resulttable.Table) error {
	return nil
}

// Name impls Checker.
func (NoopChecker) Name() string {
	return "NoopChecker"
}

type multiChecker struct {
	checkers []Checker
	name     string
}

func (c multiChecker) Check(expected, actual *resulttable.Table) error {
	for _, checker := range c.checkers {
		if err := checker.Check(expected, actual); err != nil {
			return err
		}
	}
	return nil
}

func (c multiChecker) Name() string {
	return c.name
}

// MultiChecker assembles multiple checkers, the first failing one wins.
func MultiChecker(name string, checkers ...Checker) Checker {
	return multiChecker{
		checkers: checkers,
		name:     name,
	}
}
