package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SetValue sets a dotted key such as "runner.binary" in the config file,
// creating missing sections. Comments and formatting elsewhere survive
// because the file is edited as a yaml.Node tree. value is parsed as YAML,
// so "true", "10m" and "[a, b]" keep their types.
func SetValue(configPath, key, value string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("invalid config key %q", key)
		}
	}

	var val yaml.Node
	if err := yaml.Unmarshal([]byte(value), &val); err != nil {
		return fmt.Errorf("parsing value for %s: %w", key, err)
	}
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	if val.Kind == yaml.DocumentNode && len(val.Content) > 0 {
		node = val.Content[0]
	}

	return update(configPath, func(root *yaml.Node) error {
		cur := root
		for _, p := range parts[:len(parts)-1] {
			next := lookup(cur, p)
			if next == nil {
				next = &yaml.Node{Kind: yaml.MappingNode}
				setKey(cur, p, next)
			}
			if next.Kind != yaml.MappingNode {
				return fmt.Errorf("config key %s: %s is not a section", key, p)
			}
			cur = next
		}
		setKey(cur, parts[len(parts)-1], node)
		return nil
	})
}

// SaveSection replaces a top-level section with value.
func SaveSection(configPath, section string, value any) error {
	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return fmt.Errorf("building %s node: %w", section, err)
	}
	return update(configPath, func(root *yaml.Node) error {
		setKey(root, section, &node)
		return nil
	})
}

// SaveFlags replaces the flags section.
func SaveFlags(configPath string, flags map[string]bool) error {
	return SaveSection(configPath, "flags", flags)
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(m.Content)-1; i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setKey(m *yaml.Node, key string, val *yaml.Node) {
	for i := 0; i < len(m.Content)-1; i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = val
			return
		}
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, val)
}

// update loads configPath as a node tree, applies fn to the root mapping and
// writes the result atomically.
func update(configPath string, fn func(root *yaml.Node) error) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // G304: config path is user-controlled
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}
	if err := fn(root); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	// Write atomically (write to temp, then rename)
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".anpconf.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
