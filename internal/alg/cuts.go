package alg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/anpconf/internal/cut"
	"github.com/zjrosen/anpconf/internal/registry"
)

// ErrDuplicateCut is returned when a cut list names the same cut twice.
var ErrDuplicateCut = errors.New("duplicate cut")

// AddCuts stores each cut registry as parameter key+cutName and sets key to
// the comma-joined cut names.
func (a *AlgConfig) AddCuts(key string, cuts []*cut.Item) error {
	if err := AddCutsToRegistry(a.params, key, cuts); err != nil {
		return fmt.Errorf("addCuts - %s::%s: %w", a.name, key, err)
	}
	return nil
}

// AddCutsToRegistry is AddCuts for a bare registry.
func AddCutsToRegistry(reg *registry.Registry, key string, cuts []*cut.Item) error {
	if reg == nil {
		return errors.New("addCutsToRegistry - invalid registry")
	}

	names := make([]string, 0, len(cuts))
	for _, c := range cuts {
		if c == nil {
			return fmt.Errorf("addCutsToRegistry - %s: nil cut", key)
		}
		for _, n := range names {
			if n == c.Name() {
				return fmt.Errorf("%s: %w %s in %v", key, ErrDuplicateCut, c.Name(), names)
			}
		}
		names = append(names, c.Name())
	}

	for _, c := range cuts {
		reg.SetRegistry(key+c.Name(), c.Registry())
	}
	reg.SetVal(key, strings.Join(names, ","))
	return nil
}
