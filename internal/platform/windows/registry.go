//go:build windows

package windows

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sys/windows/registry"
)

func rootKey(scope Scope) (registry.Key, error) {
	switch scope {
	case ScopeCurrentUser:
		return registry.CURRENT_USER, nil
	case ScopeLocalMachine:
		return registry.LOCAL_MACHINE, nil
	default:
		return 0, fmt.Errorf("unknown registration scope %v", scope)
	}
}

// RegisterModule adds dllPath to the helper module list. WER only reads the
// value name; the data is a DWORD 0.
func RegisterModule(scope Scope, dllPath string) error {
	root, err := rootKey(scope)
	if err != nil {
		return err
	}
	k, _, err := registry.CreateKey(root, HelperModulesKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open %s: %w", HelperModulesKey, err)
	}
	defer k.Close()

	if err := k.SetDWordValue(dllPath, 0); err != nil {
		return fmt.Errorf("set %q: %w", dllPath, err)
	}
	return nil
}

// UnregisterModule removes dllPath. Removing a module that is not
// registered is not an error.
func UnregisterModule(scope Scope, dllPath string) error {
	root, err := rootKey(scope)
	if err != nil {
		return err
	}
	k, err := registry.OpenKey(root, HelperModulesKey, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", HelperModulesKey, err)
	}
	defer k.Close()

	if err := k.DeleteValue(dllPath); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete %q: %w", dllPath, err)
	}
	return nil
}

// RegisteredModules returns the module paths registered in scope, sorted.
func RegisteredModules(scope Scope) ([]string, error) {
	root, err := rootKey(scope)
	if err != nil {
		return nil, err
	}
	k, err := registry.OpenKey(root, HelperModulesKey, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", HelperModulesKey, err)
	}
	defer k.Close()

	names, err := k.ReadValueNames(0)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", HelperModulesKey, err)
	}
	sort.Strings(names)
	return names, nil
}
