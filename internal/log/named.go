package log

import "sync"

// Named is a logger bound to a name and category. Every AlgConfig, run
// wrapper and helper logs through one, so messages carry the owner's name.
type Named struct {
	name string
	cat  Category
}

var (
	namedMu sync.Mutex
	named   = make(map[string]*Named)
)

// Get returns the process-wide logger for name, creating it on first use.
// Later calls with the same name return the same logger, whatever cat is.
func Get(name string, cat Category) *Named {
	namedMu.Lock()
	defer namedMu.Unlock()

	if l, ok := named[name]; ok {
		return l
	}
	l := &Named{name: name, cat: cat}
	named[name] = l
	return l
}

// Name returns the logger name.
func (n *Named) Name() string { return n.name }

// Category returns the category the logger was created with.
func (n *Named) Category() Category { return n.cat }

func (n *Named) Debug(msg string, fields ...any) { log(LevelDebug, n.cat, n.name, msg, fields...) }
func (n *Named) Info(msg string, fields ...any)  { log(LevelInfo, n.cat, n.name, msg, fields...) }
func (n *Named) Warn(msg string, fields ...any)  { log(LevelWarn, n.cat, n.name, msg, fields...) }
func (n *Named) Error(msg string, fields ...any) { log(LevelError, n.cat, n.name, msg, fields...) }
