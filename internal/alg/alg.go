// Package alg builds the algorithm configuration tree handed to the runner.
package alg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/registry"
)

var (
	// ErrDuplicateChild is returned when a child key collides with another
	// key of the exported registry.
	ErrDuplicateChild = errors.New("algorithm key already exists")
	// ErrCycle is returned when a node is its own descendant.
	ErrCycle = errors.New("algorithm tree contains a cycle")
)

// Item is accepted by AddAlg: a single *AlgConfig or an Algs list.
type Item interface {
	addTo(parent *AlgConfig)
}

// Algs is an ordered list of items added one after another.
type Algs []Item

func (l Algs) addTo(parent *AlgConfig) {
	for _, it := range l {
		parent.AddAlg(it)
	}
}

type child struct {
	key string
	alg *AlgConfig
}

// AlgConfig is one named, typed algorithm node with parameters, children
// and select keys.
type AlgConfig struct {
	name     string
	algType  string
	target   string
	children []child
	params   *registry.Registry
	keys     []*SelectKey
	log      *log.Named
}

// New creates a node. algType is passed through to the runner, which uses
// it to pick the algorithm implementation.
func New(name, algType string) *AlgConfig {
	return &AlgConfig{
		name:    name,
		algType: algType,
		params:  registry.New(),
		log:     log.Get(name, log.CatAlg),
	}
}

func (a *AlgConfig) addTo(parent *AlgConfig) {
	parent.SetAlg(a.name, a)
}

// Name returns the algorithm name.
func (a *AlgConfig) Name() string { return a.name }

// Type returns the algorithm type.
func (a *AlgConfig) Type() string { return a.algType }

// Target returns the free-form target label.
func (a *AlgConfig) Target() string { return a.target }

// SetTarget sets the target label.
func (a *AlgConfig) SetTarget(target string) { a.target = target }

// SetAlg registers child under key. A nil child or an existing key is
// logged and ignored.
func (a *AlgConfig) SetAlg(key string, c *AlgConfig) bool {
	if c == nil {
		a.log.Warn("SetAlg - wrong algorithm type", "key", key)
		return false
	}
	if a.GetAlg(key) != nil {
		a.log.Warn("SetAlg - key already exists", "key", key)
		return false
	}
	a.children = append(a.children, child{key: key, alg: c})
	return true
}

// AddAlg adds a node under its own name, or each element of a list.
func (a *AlgConfig) AddAlg(it Item) {
	if it == nil {
		a.log.Warn("AddAlg - unknown algorithm type", "type", "nil")
		return
	}
	if c, ok := it.(*AlgConfig); ok && c == nil {
		a.log.Warn("AddAlg - unknown algorithm type", "type", "nil *AlgConfig")
		return
	}
	it.addTo(a)
}

// GetAlg returns the child registered under key, or nil.
func (a *AlgConfig) GetAlg(key string) *AlgConfig {
	for _, c := range a.children {
		if c.key == key {
			return c.alg
		}
	}
	return nil
}

// ChildKeys returns the child keys in insertion order.
func (a *AlgConfig) ChildKeys() []string {
	keys := make([]string, len(a.children))
	for i, c := range a.children {
		keys[i] = c.key
	}
	return keys
}

// Children returns the child nodes in insertion order.
func (a *AlgConfig) Children() []*AlgConfig {
	out := make([]*AlgConfig, len(a.children))
	for i, c := range a.children {
		out[i] = c.alg
	}
	return out
}

// SetPar writes a parameter, replacing any previous value.
func (a *AlgConfig) SetPar(key string, v Value) error {
	return SetRegistryKey(a.params, key, v)
}

// SetKey is an alias of SetPar.
func (a *AlgConfig) SetKey(key string, v Value) error {
	return a.SetPar(key, v)
}

// SetGlobalPar sets the parameter on a and on every descendant.
func (a *AlgConfig) SetGlobalPar(key string, v Value) error {
	return a.setGlobalPar(key, v, make(map[*AlgConfig]bool))
}

func (a *AlgConfig) setGlobalPar(key string, v Value, seen map[*AlgConfig]bool) error {
	if seen[a] {
		return nil
	}
	seen[a] = true
	if err := a.SetPar(key, v); err != nil {
		return err
	}
	for _, c := range a.children {
		if err := c.alg.setGlobalPar(key, v, seen); err != nil {
			return err
		}
	}
	return nil
}

// DelPar removes a parameter. Missing keys are ignored.
func (a *AlgConfig) DelPar(key string) {
	a.params.RemoveKey(key)
}

// DelKey is an alias of DelPar.
func (a *AlgConfig) DelKey(key string) {
	a.DelPar(key)
}

// Par returns the text of a scalar parameter.
func (a *AlgConfig) Par(key string) (string, bool) {
	return a.params.Get(key)
}

// Params returns a copy of the parameter registry.
func (a *AlgConfig) Params() *registry.Registry {
	return a.params.Clone()
}

// GetSelectKey returns the select key called key, creating it with keyType
// on first use. An unknown keyType is logged and yields nil.
func (a *AlgConfig) GetSelectKey(key string, keyType KeyType) *SelectKey {
	if k := a.selectKey(key); k != nil {
		return k
	}
	k, err := NewSelectKey(key, keyType)
	if err != nil {
		a.log.Warn("GetSelectKey - unknown type key", "key", key, "type", string(keyType))
		return nil
	}
	a.keys = append(a.keys, k)
	return k
}

func (a *AlgConfig) selectKey(key string) *SelectKey {
	for _, k := range a.keys {
		if k.name == key {
			return k
		}
	}
	return nil
}

// AddSelectKey appends expr with a "yes" default decision.
func (a *AlgConfig) AddSelectKey(key string, keyType KeyType, expr string) bool {
	return a.AddSelectKeyDecision(key, keyType, expr, true)
}

// AddSelectKeyDecision appends expr to the select key, creating it on
// first use. A type that differs from the stored one drops the call.
func (a *AlgConfig) AddSelectKeyDecision(key string, keyType KeyType, expr string, decision bool) bool {
	if key == "" {
		a.log.Warn("AddSelectKey - empty key")
		return false
	}
	if k := a.selectKey(key); k != nil && k.keyType != keyType {
		a.log.Warn("AddSelectKey - key type mismatch", "key", key, "type", string(keyType), "stored", string(k.keyType))
		return false
	}
	k := a.GetSelectKey(key, keyType)
	if k == nil {
		return false
	}
	k.Add(expr, decision)
	return true
}

// AddSelectKeyObject attaches a prebuilt select key. A nil key or a name
// already in use is logged and ignored.
func (a *AlgConfig) AddSelectKeyObject(k *SelectKey) bool {
	if k == nil {
		a.log.Warn("AddSelectKeyObject - key has wrong type")
		return false
	}
	if a.selectKey(k.name) != nil {
		a.log.Warn("AddSelectKeyObject - key already exists", "key", k.name)
		return false
	}
	a.keys = append(a.keys, k)
	return true
}

// SelectKeys returns the select keys in creation order.
func (a *AlgConfig) SelectKeys() []*SelectKey {
	out := make([]*SelectKey, len(a.keys))
	copy(out, a.keys)
	return out
}

// ConfigRegistry exports the node into a fresh registry: parameters,
// AlgType, AlgName, one nested registry per child, AlgList and one nested
// registry per select key.
func (a *AlgConfig) ConfigRegistry() (*registry.Registry, error) {
	return a.export(make(map[*AlgConfig]bool))
}

func (a *AlgConfig) export(path map[*AlgConfig]bool) (*registry.Registry, error) {
	if path[a] {
		return nil, fmt.Errorf("%w: %s", ErrCycle, a.name)
	}
	path[a] = true
	defer delete(path, a)

	reg := registry.New()
	reg.Merge(a.params)
	reg.SetVal("AlgType", a.algType)
	reg.SetVal("AlgName", a.name)

	names := make([]string, 0, len(a.children))
	for _, c := range a.children {
		if reg.KeyExists(c.key) {
			a.log.Error("GetConfigRegistry - AlgEvent key already exists", "key", c.key)
			return nil, fmt.Errorf("%s: %w: %s", a.name, ErrDuplicateChild, c.key)
		}
		sub, err := c.alg.export(path)
		if err != nil {
			return nil, err
		}
		reg.SetRegistry(c.key, sub)
		names = append(names, c.key)
	}
	reg.SetVal("AlgList", strings.Join(names, ", "))

	for _, k := range a.keys {
		if reg.KeyExists(k.name) {
			a.log.Warn("GetConfigRegistry - SelectKey key already exists", "key", k.name)
			continue
		}
		sub, err := k.ConfigRegistry()
		if err != nil {
			return nil, err
		}
		reg.SetRegistry(k.name, sub)
	}
	return reg, nil
}

// Print logs the node and its descendants, one line per node.
func (a *AlgConfig) Print() {
	a.print(0, make(map[*AlgConfig]bool))
}

func (a *AlgConfig) print(depth int, path map[*AlgConfig]bool) {
	if path[a] {
		return
	}
	path[a] = true
	defer delete(path, a)

	a.log.Info("AlgConfig: "+strings.Repeat("  ", depth)+a.name, "type", a.algType)
	for _, c := range a.children {
		c.alg.print(depth+1, path)
	}
}
