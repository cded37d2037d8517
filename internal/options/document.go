// Package options reads the preboot option document and translates its
// high-level settings into register edits.
package options

import (
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// reservedKeys name command-line inputs that may appear in a shared
// document but are never options.
var reservedKeys = []string{"fw", "out"}

// groupKeys hold nested option groups. A group with no non-null member is
// treated as absent.
var groupKeys = []string{"temp_threshold", "bw_throttle", "cxl_temp_threshold"}

// Document is a filtered preboot option document with key order preserved.
type Document struct {
	keys   []string
	values map[string]*yaml.Node
}

// LoadFile reads a document from path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("options: %s: %w", path, err)
	}
	return doc, nil
}

// Load parses a JSON or YAML option document. Reserved keys, null values,
// and groups without any set member are dropped.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{values: make(map[string]*yaml.Node)}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if root.Kind == 0 {
		return doc, nil
	}
	if len(root.Content) != 1 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("option document must be a mapping")
	}

	m := root.Content[0]
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i].Value, m.Content[i+1]
		if !keep(key, val) {
			continue
		}
		if _, dup := doc.values[key]; dup {
			return nil, fmt.Errorf("option %q given twice (line %d)", key, m.Content[i].Line)
		}
		doc.keys = append(doc.keys, key)
		doc.values[key] = val
	}
	return doc, nil
}

func keep(key string, val *yaml.Node) bool {
	if slices.Contains(reservedKeys, key) || isNull(val) {
		return false
	}
	if slices.Contains(groupKeys, key) && val.Kind == yaml.MappingNode {
		for i := 1; i < len(val.Content); i += 2 {
			if !isNull(val.Content[i]) {
				return true
			}
		}
		return false
	}
	return true
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// Keys returns the option keys in document order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Has reports whether key is set.
func (d *Document) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Len returns the number of set options.
func (d *Document) Len() int { return len(d.keys) }

// Unrecognized lists keys that no option handler consumes.
func (d *Document) Unrecognized() []string {
	var out []string
	for _, k := range d.keys {
		if !isKnownOption(k) {
			out = append(out, k)
		}
	}
	return out
}

func (d *Document) get(key string) *yaml.Node {
	return d.values[key]
}
