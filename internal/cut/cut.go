// Package cut holds named selection expressions and their AND/OR
// compositions.
package cut

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/registry"
)

var (
	ErrBadName        = errors.New("cut name must not be empty or contain whitespace")
	ErrUnbalanced     = errors.New("brackets do not match")
	ErrMixedLogic     = errors.New("can not contain both && and || operators")
	ErrNoOperator     = errors.New("does not contain known operator")
	ErrInvalidLogic   = errors.New("has invalid logic")
	ErrNotNumber      = errors.New("contains comparison with non-number")
	ErrDuplicate      = errors.New("duplicate cut")
	ErrBothLists      = errors.New("both AND and OR are defined")
	ErrUnknownCombine = errors.New("unknown option")
)

// Operators are tried in this order; the first one found past the start of
// a term splits it.
var Operators = []string{">=", ">", "<=", "<", "==", "!="}

// ConfError reports an invalid cut expression.
type ConfError struct {
	Conf string
	Term string
	Err  error
}

func (e *ConfError) Error() string {
	if e.Term == "" {
		return fmt.Sprintf("conf=%q: %v", e.Conf, e.Err)
	}
	return fmt.Sprintf("conf=%q: %v: %q", e.Conf, e.Err, e.Term)
}

func (e *ConfError) Unwrap() error { return e.Err }

// Combine selects the list a sub-cut joins.
type Combine int

const (
	And Combine = iota
	Or
)

func (c Combine) String() string {
	switch c {
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return "unknown"
	}
}

// ParseCombine accepts "and" or "or" in any case.
func ParseCombine(s string) (Combine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and":
		return And, nil
	case "or":
		return Or, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCombine, s)
}

// Item is a named cut. Name and conf are fixed at construction; sub-cuts
// are added with AddCut.
type Item struct {
	name    string
	conf    string
	abs     bool
	dummy   bool
	debug   *bool
	reg     *registry.Registry
	listAND []string
	listOR  []string
	subs    []*Item
}

// Option configures an Item.
type Option func(*Item)

// WithAbs compares the absolute value of the variable.
func WithAbs() Option {
	return func(c *Item) { c.abs = true }
}

// WithDummy marks the cut as always passing.
func WithDummy() Option {
	return func(c *Item) { c.dummy = true }
}

// WithDebug sets the runner's Debug flag for this cut.
func WithDebug(debug bool) Option {
	return func(c *Item) { c.debug = &debug }
}

// New creates a cut. The name must be non-empty without whitespace and conf
// must have balanced [] and () brackets.
func New(name, conf string, opts ...Option) (*Item, error) {
	if name == "" || strings.ContainsFunc(name, unicode.IsSpace) {
		return nil, fmt.Errorf("CutItem - name=%q: %w", name, ErrBadName)
	}
	if strings.Count(conf, "[") != strings.Count(conf, "]") {
		return nil, fmt.Errorf("CutItem - [] %w: %q", ErrUnbalanced, conf)
	}
	if strings.Count(conf, "(") != strings.Count(conf, ")") {
		return nil, fmt.Errorf("CutItem - () %w: %q", ErrUnbalanced, conf)
	}

	c := &Item{name: name, conf: conf, reg: registry.New()}
	for _, opt := range opts {
		opt(c)
	}

	c.reg.SetVal("CutName", c.name)
	c.reg.SetVal("CutConf", c.conf)
	c.reg.SetVal("CutUseAbs", yesNo(c.abs))
	if c.dummy {
		c.reg.SetVal("CutDummy", "yes")
	}
	if c.debug != nil {
		c.reg.SetVal("Debug", yesNo(*c.debug))
	}
	return c, nil
}

// MustNew is New for cut tables built from literals.
func MustNew(name, conf string, opts ...Option) *Item {
	c, err := New(name, conf, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (c *Item) Name() string { return c.name }
func (c *Item) Conf() string { return c.conf }
func (c *Item) Abs() bool    { return c.abs }
func (c *Item) Dummy() bool  { return c.dummy }

// ListAND returns the names of the AND sub-cuts.
func (c *Item) ListAND() []string { return append([]string(nil), c.listAND...) }

// ListOR returns the names of the OR sub-cuts.
func (c *Item) ListOR() []string { return append([]string(nil), c.listOR...) }

// SubCuts returns the sub-cuts in the order they were added.
func (c *Item) SubCuts() []*Item { return append([]*Item(nil), c.subs...) }

// Registry returns a copy of the exported cut registry.
func (c *Item) Registry() *registry.Registry {
	return c.reg.Clone()
}

// ConfigRegistry returns the exported cut registry.
func (c *Item) ConfigRegistry() (*registry.Registry, error) {
	return c.Registry(), nil
}

// AddCut nests sub under c and records it in ListAND or ListOR. Mixing AND
// and OR sub-cuts on one item is an error.
func (c *Item) AddCut(sub *Item, how Combine) error {
	if sub == nil {
		return fmt.Errorf("AddCut - %s: nil cut", c.name)
	}
	if c.hasSub(sub.name) {
		return fmt.Errorf("AddCut - %w: %s", ErrDuplicate, sub.name)
	}

	switch how {
	case And:
		if len(c.listOR) > 0 {
			return fmt.Errorf("AddCut - %w - logic error: %s", ErrBothLists, sub.name)
		}
		c.listAND = append(c.listAND, sub.name)
	case Or:
		if len(c.listAND) > 0 {
			return fmt.Errorf("AddCut - %w - logic error: %s", ErrBothLists, sub.name)
		}
		c.listOR = append(c.listOR, sub.name)
	default:
		return fmt.Errorf("AddCut - %w %s: %d", ErrUnknownCombine, sub.name, int(how))
	}

	c.subs = append(c.subs, sub)
	c.reg.SetRegistry(sub.name, sub.reg)
	c.reg.SetVal("ListAND", strings.Join(c.listAND, ","))
	c.reg.SetVal("ListOR", strings.Join(c.listOR, ","))

	log.Debug(log.CatCut, "AddCut", "cut", c.name, "sub", sub.name, "option", how.String())
	return nil
}

// AddCuts adds each cut in order and stops at the first error.
func (c *Item) AddCuts(subs []*Item, how Combine) error {
	for _, sub := range subs {
		if err := c.AddCut(sub, how); err != nil {
			return err
		}
	}
	return nil
}

func (c *Item) hasSub(name string) bool {
	for _, n := range c.listAND {
		if n == name {
			return true
		}
	}
	for _, n := range c.listOR {
		if n == name {
			return true
		}
	}
	return false
}

// IsValidConf checks the item's own expression.
func (c *Item) IsValidConf() error {
	return IsValidConf(c.conf)
}

// IsValidConf checks that conf is a list of comparisons joined by && or by
// ||. Each comparison needs a known operator after its first character and
// a numeric right-hand side.
func IsValidConf(conf string) error {
	hasAnd := strings.Contains(conf, "&&")
	hasOr := strings.Contains(conf, "||")
	if hasAnd && hasOr {
		return &ConfError{Conf: conf, Err: ErrMixedLogic}
	}

	sep := "&&"
	if hasOr {
		sep = "||"
	}

	for _, term := range strings.Split(conf, sep) {
		if term == "" {
			continue
		}

		op := findOperator(term)
		if op == "" {
			return &ConfError{Conf: conf, Term: term, Err: ErrNoOperator}
		}

		parts := strings.Split(term, op)
		if len(parts) != 2 {
			return &ConfError{Conf: conf, Term: term, Err: fmt.Errorf("%w for operator %s", ErrInvalidLogic, op)}
		}

		val, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return &ConfError{Conf: conf, Term: term, Err: ErrNotNumber}
		}
		log.Debug(log.CatCut, "IsValidConf", "conf", conf, "var", strings.TrimSpace(parts[0]), "op", op, "value", val)
	}
	return nil
}

func findOperator(term string) string {
	for _, op := range Operators {
		if strings.Index(term, op) > 0 {
			return op
		}
	}
	return ""
}

// String returns "name: conf".
func (c *Item) String() string {
	return c.name + ": " + c.conf
}
