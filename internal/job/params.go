package job

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/anpconf/internal/alg"
	"github.com/zjrosen/anpconf/internal/registry"
)

// Param is one parameter in document order.
type Param struct {
	Key   string
	Value alg.Value
}

// Params keeps the order the keys appear in the job file. Scalars map by
// their resolved YAML tag: booleans to alg.Bool, integers to alg.Int,
// floats to alg.Float, everything else to alg.String. Sequences of scalars
// become alg.List and mappings become nested registries.
type Params []Param

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}

	out := make(Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		v, err := nodeValue(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("param %s: %w", key, err)
		}
		out = append(out, Param{Key: key, Value: v})
	}
	*p = out
	return nil
}

// Get returns the value stored for key.
func (p Params) Get(key string) (alg.Value, bool) {
	for _, par := range p {
		if par.Key == key {
			return par.Value, true
		}
	}
	return nil, false
}

func nodeValue(n *yaml.Node) (alg.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.ScalarNode:
		return scalarValue(n)
	case yaml.SequenceNode:
		list := make(alg.List, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind == yaml.AliasNode {
				c = c.Alias
			}
			if c.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: list elements must be scalars", c.Line)
			}
			v, err := scalarValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		reg := registry.New()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			if err := alg.SetRegistryKey(reg, key, v); err != nil {
				return nil, err
			}
		}
		return alg.Nested{Reg: reg}, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported value", n.Line)
	}
}

func scalarValue(n *yaml.Node) (alg.Value, error) {
	switch n.ShortTag() {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return alg.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return alg.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return alg.Float(f), nil
	case "!!null":
		return alg.String(""), nil
	default:
		return alg.String(n.Value), nil
	}
}
