package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// Get returns the first string or number value stored under key.
func (r *Registry) Get(key string) (string, bool) {
	for _, e := range r.entries {
		if e.Key == key && e.Kind != KindRegistry {
			return e.Text, true
		}
	}
	return "", false
}

// GetAll returns every string or number value stored under key, in order.
// Used to read repeated keys such as InputFiles/File.
func (r *Registry) GetAll(key string) []string {
	var out []string
	for _, e := range r.entries {
		if e.Key == key && e.Kind != KindRegistry {
			out = append(out, e.Text)
		}
	}
	return out
}

// GetRegistry returns the first nested registry stored under key.
func (r *Registry) GetRegistry(key string) (*Registry, bool) {
	for _, e := range r.entries {
		if e.Key == key && e.Kind == KindRegistry {
			return e.Reg, true
		}
	}
	return nil, false
}

// GetVec reads key as a comma separated list.
// Elements are trimmed and empty elements are dropped.
func (r *Registry) GetVec(key string) ([]string, bool) {
	val, ok := r.Get(key)
	if !ok {
		return nil, false
	}
	return SplitList(val), true
}

// GetBool reads key as a yes/no flag.
func (r *Registry) GetBool(key string) (bool, error) {
	val, ok := r.Get(key)
	if !ok {
		return false, fmt.Errorf("key %q not found", key)
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("key %q: %q is not a yes/no value", key, val)
	}
}

// GetInt reads key as an integer.
func (r *Registry) GetInt(key string) (int64, error) {
	val, ok := r.Get(key)
	if !ok {
		return 0, fmt.Errorf("key %q not found", key)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("key %q: %w", key, ErrNotNumber)
	}
	return n, nil
}

// GetFloat reads key as a floating point number.
func (r *Registry) GetFloat(key string) (float64, error) {
	val, ok := r.Get(key)
	if !ok {
		return 0, fmt.Errorf("key %q not found", key)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, fmt.Errorf("key %q: %w", key, ErrNotNumber)
	}
	return f, nil
}

// SplitList splits a comma separated value, trimming elements and
// dropping empty ones.
func SplitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
