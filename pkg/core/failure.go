package core

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// FailureKind classifies why a case failed.
type FailureKind string

// Failure kinds
const (
	KindNone            FailureKind = ""
	KindAssertion       FailureKind = "assertion"
	KindWaitTimeout     FailureKind = "wait-timeout"
	KindElementNotFound FailureKind = "element-not-found"
	// KindSetup covers everything that is not the application misbehaving:
	// browser start, login, bad configuration, cancellation.
	KindSetup FailureKind = "setup"
)

// Failure is a classified case failure. Diff is optional detail, e.g. the
// difference between two result tables.
type Failure struct {
	Kind FailureKind
	Msg  string
	Diff string
}

func (f *Failure) Error() string {
	if f.Diff == "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", f.Kind, f.Msg)
	for _, line := range strings.Split(strings.TrimRight(f.Diff, "\n"), "\n") {
		b.WriteString("\t")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// AssertionFailed returns an assertion failure carrying diff.
func AssertionFailed(diff string, format string, args ...interface{}) error {
	return errors.Trace(&Failure{Kind: KindAssertion, Msg: fmt.Sprintf(format, args...), Diff: diff})
}

// WaitTimeout returns a failure for a network exchange that was never observed.
func WaitTimeout(format string, args ...interface{}) error {
	return errors.Trace(&Failure{Kind: KindWaitTimeout, Msg: fmt.Sprintf(format, args...)})
}

// ElementNotFound returns a locator failure for selector.
func ElementNotFound(selector string) error {
	return errors.Trace(&Failure{Kind: KindElementNotFound, Msg: fmt.Sprintf("no element matches %q", selector)})
}

// SetupFailed marks err as a harness failure unless it is already classified.
func SetupFailed(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if _, ok := AsFailure(err); ok {
		return errors.Annotatef(err, format, args...)
	}
	return errors.Trace(&Failure{Kind: KindSetup, Msg: fmt.Sprintf(format, args...) + ": " + err.Error()})
}

// AsFailure returns the Failure at the cause of err.
func AsFailure(err error) (*Failure, bool) {
	f, ok := errors.Cause(err).(*Failure)
	return f, ok
}

// KindOf classifies err. Unclassified errors count as setup failures.
func KindOf(err error) FailureKind {
	if err == nil {
		return KindNone
	}
	if f, ok := AsFailure(err); ok {
		return f.Kind
	}
	return KindSetup
}
