package alg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/anpconf/internal/registry"
)

// ErrUnknownKeyType is returned for select key types other than AND and OR.
var ErrUnknownKeyType = errors.New("unknown select key type")

// KeyType combines the selections of a SelectKey.
type KeyType string

const (
	KeyAND KeyType = "AND"
	KeyOR  KeyType = "OR"
)

// ParseKeyType accepts "AND" or "OR".
func ParseKeyType(s string) (KeyType, error) {
	switch KeyType(s) {
	case KeyAND, KeyOR:
		return KeyType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKeyType, s)
}

// Selection is one expression of a SelectKey and the decision taken when it
// cannot be evaluated.
type Selection struct {
	Expr     string
	Decision bool
}

// SelectKey is a named set of selections combined by AND or OR.
type SelectKey struct {
	name       string
	keyType    KeyType
	selections []Selection
}

// NewSelectKey creates an empty key. The type is fixed for its lifetime.
func NewSelectKey(name string, keyType KeyType) (*SelectKey, error) {
	if name == "" {
		return nil, errors.New("select key name is empty")
	}
	if _, err := ParseKeyType(string(keyType)); err != nil {
		return nil, err
	}
	return &SelectKey{name: name, keyType: keyType}, nil
}

// Name returns the key name.
func (k *SelectKey) Name() string {
	return k.name
}

// Type returns AND or OR.
func (k *SelectKey) Type() KeyType {
	return k.keyType
}

// Selections returns a copy of the accumulated selections.
func (k *SelectKey) Selections() []Selection {
	out := make([]Selection, len(k.selections))
	copy(out, k.selections)
	return out
}

// Add appends a selection.
func (k *SelectKey) Add(expr string, decision bool) {
	k.selections = append(k.selections, Selection{Expr: expr, Decision: decision})
}

// ConfigRegistry exports the key:
//
//	KeyName: muonKey
//	KeyType: AND
//	KeyList: Select0,Select1
//	Select0:
//	   Selection: [Pt] > 20
//	   Decision: yes
func (k *SelectKey) ConfigRegistry() (*registry.Registry, error) {
	reg := registry.New()
	reg.SetVal("KeyName", k.name)
	reg.SetVal("KeyType", string(k.keyType))

	names := make([]string, len(k.selections))
	for i := range k.selections {
		names[i] = fmt.Sprintf("Select%d", i)
	}
	reg.SetVal("KeyList", strings.Join(names, ","))

	for i, s := range k.selections {
		sub := registry.New()
		sub.SetVal("Selection", s.Expr)
		sub.SetVal("Decision", formatBool(s.Decision))
		reg.SetRegistry(names[i], sub)
	}
	return reg, nil
}
