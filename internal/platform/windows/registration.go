package windows

import (
	"fmt"
	"strings"
)

// HelperModulesKey lists the runtime exception helper modules WER loads
// when a process crashes.
const HelperModulesKey = `SOFTWARE\Microsoft\Windows\Windows Error Reporting\RuntimeExceptionHelperModules`

// Scope selects the hive a module is registered under.
type Scope int

const (
	ScopeCurrentUser Scope = iota
	ScopeLocalMachine
)

func (s Scope) String() string {
	switch s {
	case ScopeCurrentUser:
		return "user"
	case ScopeLocalMachine:
		return "machine"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ParseScope accepts "user"/"hkcu" and "machine"/"hklm".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "hkcu", "":
		return ScopeCurrentUser, nil
	case "machine", "hklm":
		return ScopeLocalMachine, nil
	default:
		return 0, fmt.Errorf("unknown registration scope %q", s)
	}
}
