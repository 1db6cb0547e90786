package util

import (
	"strings"
	"sync"

	"github.com/rogpeppe/fastuuid"
)

var (
	uuidOnce sync.Once
	uuidGen  *fastuuid.Generator
)

// NewTitle returns "<prefix> <id>" where id is a fresh 128 bit id as 32
// lowercase hex digits.
func NewTitle(prefix string) string {
	uuidOnce.Do(func() {
		uuidGen = fastuuid.MustNewGenerator()
	})
	return prefix + " " + strings.ReplaceAll(uuidGen.Hex128(), "-", "")
}
