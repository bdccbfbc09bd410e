package registry

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented plain-text dump of r, one key per line, with
// nested registries indented by three spaces per level.
func (r *Registry) Print(w io.Writer) error {
	return r.print(w, 0)
}

func (r *Registry) print(w io.Writer, margin int) error {
	pad := strings.Repeat(" ", margin)
	for _, e := range r.Entries() {
		if e.Kind == KindRegistry {
			if _, err := fmt.Fprintf(w, "%s%s:\n", pad, e.Key); err != nil {
				return err
			}
			if err := e.Reg.print(w, margin+3); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", pad, e.Key, e.Text); err != nil {
			return err
		}
	}
	return nil
}

// String returns the Print dump of r.
func (r *Registry) String() string {
	var sb strings.Builder
	_ = r.Print(&sb)
	return sb.String()
}

// Walk calls fn for every entry in depth-first order. path holds the keys
// of the enclosing registries. Returning false from fn skips the children
// of a registry entry.
func (r *Registry) Walk(fn func(path []string, e Entry) bool) {
	r.walk(nil, fn)
}

func (r *Registry) walk(path []string, fn func([]string, Entry) bool) {
	for _, e := range r.Entries() {
		if !fn(path, e) {
			continue
		}
		if e.Kind == KindRegistry {
			e.Reg.walk(append(path[:len(path):len(path)], e.Key), fn)
		}
	}
}
