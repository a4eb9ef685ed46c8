// Package wallet validates wallet address formats.
package wallet

import (
	"regexp"
)

// addressPattern matches base58-encoded public keys: 32-44 characters
// from the base58 alphabet (no 0, O, I, l).
var addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// IsValid reports whether addr is a structurally valid wallet address.
// It checks format only, not on-chain existence.
func IsValid(addr string) bool {
	return addressPattern.MatchString(addr)
}
