package core

import (
	"fmt"
	"sync"
)

// Case is a registered end-to-end scenario.
type Case interface {
	// Name returns the unique name for the case.
	Name() string
	// SkipReason returns why the case is disabled, empty if it runs.
	SkipReason() string
}

var (
	casesMu   sync.RWMutex
	cases     = map[string]Case{}
	caseOrder []string
)

// RegisterCase registers a case. Cases run in registration order.
func RegisterCase(c Case) {
	casesMu.Lock()
	defer casesMu.Unlock()

	name := c.Name()
	if _, ok := cases[name]; ok {
		panic(fmt.Sprintf("case %s is already registered", name))
	}
	cases[name] = c
	caseOrder = append(caseOrder, name)
}

// GetCase gets the registered case.
func GetCase(name string) Case {
	casesMu.RLock()
	defer casesMu.RUnlock()
	return cases[name]
}

// Cases returns all registered cases in registration order.
func Cases() []Case {
	casesMu.RLock()
	defer casesMu.RUnlock()
	all := make([]Case, 0, len(caseOrder))
	for _, name := range caseOrder {
		all = append(all, cases[name])
	}
	return all
}
