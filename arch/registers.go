package arch

import (
	"fmt"
	"strings"
)

// VF is the register index used for carry, borrow and collision flags.
const VF = 0xf

// IsRegister returns true if the given name represents a known register.
func IsRegister(name string) bool {
	return RegisterIndex(name) > -1
}

// RegisterIndex returns the index for the given general purpose register.
// Accepted names are V0 through VF, case insensitive.
// Returns -1 if the name is not recognized.
func RegisterIndex(name string) int {
	name = strings.ToUpper(name)
	if len(name) != 2 || name[0] != 'V' {
		return -1
	}

	switch c := name[1]; {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// RegisterName returns the name associated with the given register index.
// Returns "" if the index is not recognized.
func RegisterName(n int) string {
	if n < 0 || n >= RegisterCount {
		return ""
	}
	return fmt.Sprintf("V%X", n)
}
