package registry

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes unique registries as mappings and non-unique
// registries as sequences of single-key mappings, so repeated keys such as
// InputFiles/File survive a round trip.
func (r *Registry) MarshalYAML() (any, error) {
	return r.yamlNode(), nil
}

func (r *Registry) yamlNode() *yaml.Node {
	if !r.UniqueKeys() {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range r.Entries() {
			item := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			item.Content = append(item.Content, keyNode(e.Key), valueNode(e))
			seq.Content = append(seq.Content, item)
		}
		return seq
	}

	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range r.Entries() {
		m.Content = append(m.Content, keyNode(e.Key), valueNode(e))
	}
	return m
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func valueNode(e Entry) *yaml.Node {
	switch e.Kind {
	case KindRegistry:
		return e.Reg.yamlNode()
	case KindNumber:
		tag := "!!float"
		if _, err := strconv.ParseInt(e.Text, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: e.Text}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Text}
	}
}

// UnmarshalYAML decodes the layout produced by MarshalYAML.
func (r *Registry) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := fromYAML(node)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}

func fromYAML(node *yaml.Node) (*Registry, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	r := New()
	switch node.Kind {
	case yaml.MappingNode:
		if err := addYAMLPairs(r, node); err != nil {
			return nil, err
		}
	case yaml.SequenceNode:
		r.AllowNonUniqueKeys()
		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: non-unique registry items must be mappings", item.Line)
			}
			if err := addYAMLPairs(r, item); err != nil {
				return nil, err
			}
		}
	case yaml.ScalarNode:
		if node.ShortTag() != "!!null" {
			return nil, fmt.Errorf("line %d: registry must be a mapping or sequence", node.Line)
		}
	default:
		return nil, fmt.Errorf("line %d: registry must be a mapping or sequence", node.Line)
	}
	return r, nil
}

func addYAMLPairs(r *Registry, m *yaml.Node) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i].Value, m.Content[i+1]
		if key == "" {
			return fmt.Errorf("line %d: %w", m.Content[i].Line, ErrEmptyKey)
		}
		switch val.Kind {
		case yaml.MappingNode, yaml.SequenceNode:
			sub, err := fromYAML(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			r.set(Entry{Key: key, Kind: KindRegistry, Reg: sub})
		case yaml.ScalarNode:
			switch val.ShortTag() {
			case "!!int", "!!float":
				if err := r.SetValueDouble(key, val.Value); err != nil {
					// YAML accepts forms like 0x1F or .inf that the runner does not
					r.SetVal(key, val.Value)
				}
			case "!!null":
				r.SetVal(key, "")
			default:
				r.SetVal(key, val.Value)
			}
		default:
			return fmt.Errorf("line %d: unsupported value for %q", val.Line, key)
		}
	}
	return nil
}

// MarshalYAMLBytes is a convenience wrapper around yaml.Marshal.
func (r *Registry) MarshalYAMLBytes() ([]byte, error) {
	return yaml.Marshal(r)
}

// UnmarshalYAMLBytes parses a YAML document into a new registry.
func UnmarshalYAMLBytes(data []byte) (*Registry, error) {
	r := New()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}
