// Package flags holds the feature flags read from the flags section of the
// config file.
package flags

import (
	"maps"

	"github.com/zjrosen/anpconf/internal/log"
)

const (
	FlagHistory      = "history"
	FlagListingCache = "listing-cache"
)

// Flag describes a known feature flag.
type Flag struct {
	Name    string
	Usage   string
	Default bool
}

var known = []Flag{
	{Name: FlagHistory, Usage: "record exported builds in the history database"},
	{Name: FlagListingCache, Usage: "cache remote directory listings between runs", Default: true},
}

// Known returns the flags anpconf reads, in a stable order.
func Known() []Flag {
	return append([]Flag(nil), known...)
}

// Lookup returns the known flag called name.
func Lookup(name string) (Flag, bool) {
	for _, f := range known {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

// Registry is the resolved flag state. It is read-only after New.
type Registry struct {
	flags map[string]bool
}

// New resolves values over the defaults of the known flags. Unknown names
// are kept but logged, since they usually are typos.
func New(values map[string]bool) *Registry {
	flags := make(map[string]bool, len(known)+len(values))
	for _, f := range known {
		flags[f.Name] = f.Default
	}
	for name, on := range values {
		if _, ok := Lookup(name); !ok {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
		flags[name] = on
	}
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags resolved", "flags", r.All())
	return r
}

// Enabled reports whether name is on. A nil registry and unknown names
// report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of the resolved flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}
