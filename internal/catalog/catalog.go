// Package catalog loads the register catalog: the table that names every
// sysconfig register, gives its numeric id, and optionally maps value
// labels to raw register values.
//
// The source is a JSON (or YAML) document keyed by register name:
//
//	{
//	  "g_ddr_frequency": {"id": "0x1", "mapping": {"3200": 0, "4800": 3}, "display": "DDR speed"},
//	  "g_cxl_mem_size":  {"id": "0x2a"}
//	}
//
// Document order is preserved. When two registers share an id, or two labels
// share a raw value, the first one wins on reverse lookup.
package catalog

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/leosyscfg/pkg/types"
)

// DefaultFileName is the catalog name shipped next to the vendor tooling.
const DefaultFileName = "leo_system_config_param_id_pub.json"

// Label is one entry of a register's value mapping.
type Label struct {
	Label string
	Raw   uint32
}

// Register describes one catalog entry.
type Register struct {
	Name    string
	ID      uint32
	Display string
	Mapping []Label // nil when the register takes raw values
}

// DisplayName is the display label, or the register name when none is set.
func (r *Register) DisplayName() string {
	if r.Display != "" {
		return r.Display
	}
	return r.Name
}

// HasMapping reports whether values go through a label table.
func (r *Register) HasMapping() bool { return r.Mapping != nil }

// Catalog is a read-only register index.
type Catalog struct {
	regs   []*Register
	byName map[string]*Register
	byID   map[uint32]*Register
}

// Decoded is a raw register value mapped back to its catalog form.
type Decoded struct {
	Name    string `json:"name"`
	Display string `json:"display"`
	ID      uint32 `json:"id"`
	Raw     uint32 `json:"raw"`
	// Label is the mapping label for Raw, empty for unmapped registers.
	Label string `json:"label,omitempty"`
	// Value is the numeric form of Label when it parses as an integer, and
	// Raw otherwise.
	Value int64 `json:"value"`
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.Wrap(types.ErrKindCatalogLoad, err, "open catalog")
	}
	defer f.Close()

	cat, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Load parses a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, types.Wrap(types.ErrKindCatalogLoad, err, "read catalog")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, types.Wrap(types.ErrKindCatalogLoad, err, "parse catalog")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, types.Errorf(types.ErrKindCatalogLoad, "catalog must be a mapping of register names")
	}

	root := doc.Content[0]
	c := &Catalog{
		byName: make(map[string]*Register, len(root.Content)/2),
		byID:   make(map[uint32]*Register, len(root.Content)/2),
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]
		// Scalars at the top level carry document metadata such as a version.
		if body.Kind != yaml.MappingNode {
			continue
		}
		if _, dup := c.byName[name]; dup {
			return nil, types.Errorf(types.ErrKindCatalogLoad, "register %q defined twice (line %d)", name, root.Content[i].Line)
		}

		reg, err := parseRegister(name, body)
		if err != nil {
			return nil, err
		}
		c.regs = append(c.regs, reg)
		c.byName[name] = reg
		if _, seen := c.byID[reg.ID]; !seen {
			c.byID[reg.ID] = reg
		}
	}
	return c, nil
}

func parseRegister(name string, body *yaml.Node) (*Register, error) {
	reg := &Register{Name: name}
	hasID := false

	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i].Value, body.Content[i+1]
		switch key {
		case "id":
			id, err := parseHexID(val.Value)
			if err != nil || val.Kind != yaml.ScalarNode {
				return nil, types.Errorf(types.ErrKindCatalogLoad, "register %q: bad id %q (line %d)", name, val.Value, val.Line)
			}
			reg.ID = id
			hasID = true
		case "display":
			reg.Display = val.Value
		case "mapping":
			m, err := parseMapping(name, val)
			if err != nil {
				return nil, err
			}
			reg.Mapping = m
		}
	}

	if !hasID {
		return nil, types.Errorf(types.ErrKindCatalogLoad, "register %q has no id (line %d)", name, body.Line)
	}
	return reg, nil
}

func parseMapping(name string, node *yaml.Node) ([]Label, error) {
	if node.Kind != yaml.MappingNode {
		return nil, types.Errorf(types.ErrKindCatalogLoad, "register %q: mapping is not a table (line %d)", name, node.Line)
	}

	labels := make([]Label, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		label, raw := node.Content[i].Value, node.Content[i+1]
		var v int64
		if err := raw.Decode(&v); err != nil {
			return nil, types.Wrap(types.ErrKindCatalogLoad, err, "register %q: mapping %q", name, label)
		}
		labels = append(labels, Label{Label: label, Raw: uint32(v)})
	}
	return labels, nil
}

// parseHexID accepts ids with or without a 0x prefix.
func parseHexID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}

// Len returns the number of registers.
func (c *Catalog) Len() int { return len(c.regs) }

// Registers returns the registers in document order.
func (c *Catalog) Registers() []*Register {
	return append([]*Register(nil), c.regs...)
}

// Lookup returns the register called name.
func (c *Catalog) Lookup(name string) (*Register, error) {
	reg, ok := c.byName[name]
	if !ok {
		return nil, types.Errorf(types.ErrKindUnknownRegister, "unknown register %q", name)
	}
	return reg, nil
}

// LookupID returns the first register with the given id.
func (c *Catalog) LookupID(id uint32) (*Register, error) {
	reg, ok := c.byID[id]
	if !ok {
		return nil, types.Errorf(types.ErrKindUnknownRegister, "unknown register id 0x%x", id)
	}
	return reg, nil
}

// ResolveID returns the id of the register called name.
func (c *Catalog) ResolveID(name string) (uint32, error) {
	reg, err := c.Lookup(name)
	if err != nil {
		return 0, err
	}
	return reg.ID, nil
}

// EncodeValue converts label to the raw value of register name. Mapped
// registers look label up in their table; other registers parse it as a
// decimal or 0x-prefixed number.
func (c *Catalog) EncodeValue(name, label string) (uint32, error) {
	reg, err := c.Lookup(name)
	if err != nil {
		return 0, err
	}
	if !reg.HasMapping() {
		v, err := strconv.ParseInt(strings.TrimSpace(label), 0, 64)
		if err != nil || v < -1<<31 || v > 1<<32-1 {
			return 0, types.Errorf(types.ErrKindInvalidMappingValue, "register %q: %q is not a 32-bit number", name, label)
		}
		return uint32(v), nil
	}
	for _, l := range reg.Mapping {
		if l.Label == label {
			return l.Raw, nil
		}
	}
	return 0, types.Errorf(types.ErrKindInvalidMappingValue,
		"register %q: no mapping for %q (have %s)", name, label, strings.Join(reg.labels(), ", "))
}

// DecodeValue maps a raw value of register id back to its display form.
func (c *Catalog) DecodeValue(id, raw uint32) (Decoded, error) {
	reg, err := c.LookupID(id)
	if err != nil {
		return Decoded{}, err
	}

	d := Decoded{Name: reg.Name, Display: reg.DisplayName(), ID: id, Raw: raw, Value: int64(raw)}
	if !reg.HasMapping() {
		return d, nil
	}
	for _, l := range reg.Mapping {
		if l.Raw != raw {
			continue
		}
		d.Label = l.Label
		if n, err := strconv.ParseInt(l.Label, 10, 64); err == nil {
			d.Value = n
		}
		return d, nil
	}
	return Decoded{}, types.Errorf(types.ErrKindMappingDecode,
		"register %q: raw value 0x%x has no mapping label", reg.Name, raw)
}

func (r *Register) labels() []string {
	out := make([]string, len(r.Mapping))
	for i, l := range r.Mapping {
		out[i] = strconv.Quote(l.Label)
	}
	return out
}
