// Package registry implements the ordered key/value tree handed to the
// ntuple runner. A Registry holds string, number and nested registry
// entries in insertion order. By default keys are unique and a set
// replaces the previous value; AllowNonUniqueKeys switches to append mode,
// which is used for input file and histogram file lists.
package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies what an entry holds.
type Kind int

const (
	// KindString is a verbatim string value.
	KindString Kind = iota
	// KindNumber is a numeric value kept in its textual form.
	KindNumber
	// KindRegistry is a nested registry.
	KindRegistry
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindRegistry:
		return "registry"
	default:
		return "unknown"
	}
}

// Registry errors
var (
	ErrEmptyKey  = errors.New("registry key cannot be empty")
	ErrNotNumber = errors.New("registry value is not a number")
	ErrXMLText   = errors.New("text cannot be stored in XML")
)

// Entry is one key/value pair of a Registry.
type Entry struct {
	Key  string
	Kind Kind
	Text string    // string and number values
	Reg  *Registry // registry values
}

// Registry is an ordered, string-keyed configuration tree.
// The zero value is an empty registry with unique keys.
type Registry struct {
	entries   []Entry
	nonUnique bool
}

// New returns an empty registry with unique keys.
func New() *Registry {
	return &Registry{}
}

// AllowNonUniqueKeys makes subsequent sets append instead of replace.
func (r *Registry) AllowNonUniqueKeys() {
	r.nonUnique = true
}

// UniqueKeys reports whether the registry replaces values on repeated keys.
func (r *Registry) UniqueKeys() bool {
	return r == nil || !r.nonUnique
}

// SetVal stores a string value.
func (r *Registry) SetVal(key, value string) {
	r.set(Entry{Key: key, Kind: KindString, Text: value})
}

// SetRegistry stores a deep copy of sub as a nested registry.
// A nil sub stores an empty registry.
func (r *Registry) SetRegistry(key string, sub *Registry) {
	r.set(Entry{Key: key, Kind: KindRegistry, Reg: sub.Clone()})
}

// SetValueLong stores an integer given in textual form.
func (r *Registry) SetValueLong(key, value string) error {
	text := strings.TrimSpace(value)
	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return fmt.Errorf("SetValueLong %s=%q: %w", key, value, ErrNotNumber)
	}
	r.set(Entry{Key: key, Kind: KindNumber, Text: text})
	return nil
}

// SetValueDouble stores a floating point value given in textual form.
func (r *Registry) SetValueDouble(key, value string) error {
	text := strings.TrimSpace(value)
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return fmt.Errorf("SetValueDouble %s=%q: %w", key, value, ErrNotNumber)
	}
	r.set(Entry{Key: key, Kind: KindNumber, Text: text})
	return nil
}

func (r *Registry) set(e Entry) {
	if !r.nonUnique {
		for i := range r.entries {
			if r.entries[i].Key == e.Key {
				r.entries[i] = e
				return
			}
		}
	}
	r.entries = append(r.entries, e)
}

// Merge deep-copies every entry of other into r using r's key policy.
func (r *Registry) Merge(other *Registry) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		if e.Kind == KindRegistry {
			e.Reg = e.Reg.Clone()
		}
		r.set(e)
	}
}

// KeyExists reports whether key is present.
func (r *Registry) KeyExists(key string) bool {
	for _, e := range r.entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

// RemoveKey deletes every entry stored under key.
// Returns false if the key was not present.
func (r *Registry) RemoveKey(key string) bool {
	kept := r.entries[:0]
	removed := false
	for _, e := range r.entries {
		if e.Key == key {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return removed
}

// Clear removes all entries. The key policy is kept.
func (r *Registry) Clear() {
	r.entries = nil
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Keys returns entry keys in insertion order. Repeated keys appear repeatedly.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, r.Len())
	if r == nil {
		return keys
	}
	for _, e := range r.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Entries returns a copy of the entries in insertion order.
// Nested registries are shared, not copied.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Clone returns a deep copy of r. Clone of nil is an empty registry.
func (r *Registry) Clone() *Registry {
	c := New()
	if r == nil {
		return c
	}
	c.nonUnique = r.nonUnique
	c.entries = make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Kind == KindRegistry {
			e.Reg = e.Reg.Clone()
		}
		c.entries = append(c.entries, e)
	}
	return c
}

// Equal reports whether two registries hold the same entries in the same
// order with the same key policy.
func (r *Registry) Equal(other *Registry) bool {
	if r.Len() != other.Len() || r.UniqueKeys() != other.UniqueKeys() {
		return false
	}
	for i := range r.Len() {
		a, b := r.entries[i], other.entries[i]
		if a.Key != b.Key || a.Kind != b.Kind {
			return false
		}
		if a.Kind == KindRegistry {
			if !a.Reg.Equal(b.Reg) {
				return false
			}
			continue
		}
		if a.Text != b.Text {
			return false
		}
	}
	return true
}
