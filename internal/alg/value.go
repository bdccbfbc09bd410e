package alg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zjrosen/anpconf/internal/registry"
)

// ErrUnknownValue is returned when a value has no registry representation.
var ErrUnknownValue = errors.New("unknown value type")

// Exporter is implemented by objects that can render themselves as a
// registry, such as AlgConfig and SelectKey.
type Exporter interface {
	ConfigRegistry() (*registry.Registry, error)
}

// Value is a parameter value accepted by SetRegistryKey.
// The set of implementations is closed: Bool, Int, Float, String, Nested,
// List and Export.
type Value interface {
	isValue()
}

// Bool is stored as "yes" or "no".
type Bool bool

// Int is stored as an exact decimal string.
type Int int64

// Float is stored with 12 significant digits.
type Float float64

// String is stored verbatim.
type String string

// Nested stores a registry as a nested entry.
type Nested struct{ Reg *registry.Registry }

// List is stored as its comma-joined element texts.
type List []Value

// Export stores the registry produced by an Exporter.
type Export struct{ From Exporter }

func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Nested) isValue() {}
func (List) isValue()   {}
func (Export) isValue() {}

// Strings builds a List of String values.
func Strings(vals ...string) List {
	l := make(List, len(vals))
	for i, v := range vals {
		l[i] = String(v)
	}
	return l
}

// ValueError reports a value that cannot be written to a registry.
type ValueError struct {
	Key   string
	Value any
	Shape string
	Err   error
}

func (e *ValueError) Error() string {
	msg := fmt.Sprintf("SetRegistryKey - unknown type for %s: value=%v, type=%s", e.Key, e.Value, e.Shape)
	if e.Err != nil && !errors.Is(e.Err, ErrUnknownValue) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValueError) Unwrap() error {
	if e.Err == nil {
		return ErrUnknownValue
	}
	return e.Err
}

// SetRegistryKey writes v under key in reg.
func SetRegistryKey(reg *registry.Registry, key string, v Value) error {
	switch val := v.(type) {
	case Bool:
		reg.SetVal(key, formatBool(bool(val)))
	case Int:
		return reg.SetValueLong(key, strconv.FormatInt(int64(val), 10))
	case Float:
		if err := reg.SetValueDouble(key, formatFloat(float64(val))); err != nil {
			return &ValueError{Key: key, Value: v, Shape: "Float", Err: err}
		}
	case String:
		reg.SetVal(key, string(val))
	case Nested:
		if val.Reg == nil {
			return &ValueError{Key: key, Value: v, Shape: "Nested(nil)"}
		}
		reg.SetRegistry(key, val.Reg)
	case List:
		text, err := joinList(val)
		if err != nil {
			return &ValueError{Key: key, Value: v, Shape: "List", Err: err}
		}
		reg.SetVal(key, text)
	case Export:
		if val.From == nil {
			return &ValueError{Key: key, Value: v, Shape: "Export(nil)"}
		}
		sub, err := val.From.ConfigRegistry()
		if err != nil {
			return fmt.Errorf("SetRegistryKey - export %s: %w", key, err)
		}
		reg.SetRegistry(key, sub)
	default:
		return &ValueError{Key: key, Value: v, Shape: fmt.Sprintf("%T", v)}
	}
	return nil
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 12, 64)
}

// joinList renders scalar elements with the same text they would get as
// standalone values.
func joinList(l List) (string, error) {
	parts := make([]string, len(l))
	for i, v := range l {
		switch val := v.(type) {
		case Bool:
			parts[i] = formatBool(bool(val))
		case Int:
			parts[i] = strconv.FormatInt(int64(val), 10)
		case Float:
			parts[i] = formatFloat(float64(val))
		case String:
			parts[i] = string(val)
		default:
			return "", fmt.Errorf("element %d has type %T: %w", i, v, ErrUnknownValue)
		}
	}
	return strings.Join(parts, ","), nil
}
