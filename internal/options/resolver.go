package options

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/leosyscfg/internal/catalog"
	"github.com/joshuapare/leosyscfg/internal/logger"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// Resolution is the outcome of translating an option document.
type Resolution struct {
	// Edits in option processing order.
	Edits types.EditSet
	// Tags name the applied options, in the same order.
	Tags []string
}

// OutputName is the auto-generated image name for this resolution.
func (r *Resolution) OutputName() string { return OutputName(r.Tags) }

// OutputName builds an image file name from option tags.
func OutputName(tags []string) string {
	return "leo_flash." + strings.Join(tags, "_") + ".mem"
}

type handler struct {
	key   string
	apply func(rs *resolver, v *yaml.Node) error
}

// handlers run in this order regardless of document order.
var handlers = []handler{
	{"speed", func(rs *resolver, v *yaml.Node) error {
		if err := rs.mapped("g_ddr_frequency", v); err != nil {
			return err
		}
		rs.tag(label(v))
		return nil
	}},
	{"compliance", fixed("compliance", "g_cxl_compliance")},
	{"sbrefresh", fixed("refsb", "g_ddr_refresh_mode")},
	{"ddr2dpc", func(rs *resolver, _ *yaml.Node) error {
		if err := rs.set("g_ddr_2dpc", 1); err != nil {
			return err
		}
		rs.tag("2dpc")
		return nil
	}},
	{"cxl2x8", func(rs *resolver, _ *yaml.Node) error {
		if err := rs.set("g_cxl_num_link", 2); err != nil {
			return err
		}
		for _, reg := range []string{"link_0_cxl_link_width", "link_1_cxl_link_width"} {
			if err := rs.mappedLabel(reg, "cxl2x8", "8"); err != nil {
				return err
			}
		}
		rs.tag("x2")
		return nil
	}},
	{"temp_threshold", group("tmpthrsh", "g_threshold_temp_")},
	{"bw_throttle", group("thrbw", "g_threshold_bw_")},
	{"temp_sample_interval_s", fixed("tmpintvl", "g_temp_sample_interval")},
	{"ddr_page_close", fixed("pgcl", "g_ddr_page_close_mode")},
	{"cxl_temp_threshold", group("cxltmpthrsh", "link_0_temp_threshold_", "link_1_temp_threshold_")},
	{"cxl_correctable_err_threshold", fixed("cethrsh", "link_0_correctable_err_threshold", "link_1_correctable_err_threshold")},
	{"cxl_mem_size", fixed("cxlmemsz", "g_cxl_mem_size")},
	{"ddr_interleave_ways", interleave},
	{"ddrinterleaving", interleave},
	{"pmic_current_mode", func(rs *resolver, v *yaml.Node) error {
		mode, err := rs.value("pmic_current_mode", v)
		if err != nil {
			return err
		}
		if mode != 2 && mode != 3 {
			return types.Errorf(types.ErrKindUnsupportedOptionValue,
				"option %q: mode %d not supported (want 2 or 3)", "pmic_current_mode", int32(mode))
		}
		if err := rs.set("g_pmic_current_mode", mode); err != nil {
			return err
		}
		rs.tag(fmt.Sprintf("pcm%d", mode))
		return nil
	}},
	{"aes_mode", suffixed("aes%s", "g_aes_mode")},
	{"ddr_check_guard_rails", fixed("chkguard", "g_ddr_check_guard_rails")},
	{"guard_rx_margin_width", suffixed("rxmargw%s", "g_ddr_rx_margin_width")},
	{"guard_rx_margin_height", suffixed("rxmargh%s", "g_ddr_rx_margin_height")},
	{"guard_tx_margin_height", suffixed("txmargh%s", "g_ddr_tx_margin_height")},
	{"guard_tx_margin_width", suffixed("txmargw%s", "g_ddr_tx_margin_width")},
	{"cxl_mb_ready_time", suffixed("cxlmbrdy%s", "link_0_cxl_mb_ready_time", "link_1_cxl_mb_ready_time")},
	{"bis_lat", suffixed("bislat-%s-ns", "g_bis_lat")},
	{"bis_bw", suffixed("bisbw-%s-GBps", "g_bis_bw")},
	{"power_gate_mode", suffixed("pwrgate%s", "g_power_gate_mode")},
	{"perf_mode", suffixed("perf%s", "g_perf_mode")},
}

func isKnownOption(key string) bool {
	for _, h := range handlers {
		if h.key == key {
			return true
		}
	}
	return false
}

// Resolve translates doc into register edits using cat. Options are
// processed in a fixed order, not document order. Keys no handler knows
// are ignored; see Document.Unrecognized.
func Resolve(doc *Document, cat *catalog.Catalog) (*Resolution, error) {
	rs := &resolver{cat: cat, res: &Resolution{}}
	for _, h := range handlers {
		v := doc.get(h.key)
		if v == nil {
			continue
		}
		rs.key = h.key
		if err := h.apply(rs, v); err != nil {
			return nil, err
		}
	}
	logger.Debug("options resolved", "edits", len(rs.res.Edits), "tags", strings.Join(rs.res.Tags, ","))
	return rs.res, nil
}

type resolver struct {
	cat *catalog.Catalog
	res *Resolution
	key string // option being processed
}

func (rs *resolver) tag(t string) { rs.res.Tags = append(rs.res.Tags, t) }

func (rs *resolver) set(reg string, value uint32) error {
	id, err := rs.cat.ResolveID(reg)
	if err != nil {
		return err
	}
	rs.res.Edits = rs.res.Edits.Add(id, value)
	return nil
}

// raw stores the numeric option value in every named register.
func (rs *resolver) raw(v *yaml.Node, regs ...string) error {
	value, err := rs.value(rs.key, v)
	if err != nil {
		return err
	}
	for _, reg := range regs {
		if err := rs.set(reg, value); err != nil {
			return err
		}
	}
	return nil
}

func (rs *resolver) mapped(reg string, v *yaml.Node) error {
	if v.Kind != yaml.ScalarNode {
		return types.Errorf(types.ErrKindUnsupportedOptionValue, "option %q: expected a scalar", rs.key)
	}
	return rs.mappedLabel(reg, rs.key, v.Value)
}

func (rs *resolver) mappedLabel(reg, key, lbl string) error {
	id, err := rs.cat.ResolveID(reg)
	if err != nil {
		return err
	}
	raw, err := rs.cat.EncodeValue(reg, lbl)
	if err != nil {
		return types.Wrap(types.ErrKindUnsupportedOptionValue, err, "option %q", key)
	}
	rs.res.Edits = rs.res.Edits.Add(id, raw)
	return nil
}

// value converts a scalar option to its register word. Booleans become 1
// or 0; negative numbers wrap to two's complement.
func (rs *resolver) value(key string, v *yaml.Node) (uint32, error) {
	if v.Kind != yaml.ScalarNode {
		return 0, types.Errorf(types.ErrKindUnsupportedOptionValue, "option %q: expected a scalar", key)
	}
	if v.Tag == "!!bool" {
		var b bool
		if err := v.Decode(&b); err != nil {
			return 0, types.Wrap(types.ErrKindUnsupportedOptionValue, err, "option %q", key)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v.Value), 0, 64)
	if err != nil {
		return 0, types.Errorf(types.ErrKindUnsupportedOptionValue, "option %q: %q is not an integer", key, v.Value)
	}
	if n < math.MinInt32 || n > math.MaxUint32 {
		return 0, types.Errorf(types.ErrKindUnsupportedOptionValue, "option %q: %d out of range", key, n)
	}
	return uint32(n), nil
}

// label renders a scalar for use in an output tag.
func label(v *yaml.Node) string {
	if n, err := strconv.ParseInt(v.Value, 0, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return v.Value
}

// fixed stores a raw value in regs and emits tag.
func fixed(tag string, regs ...string) func(*resolver, *yaml.Node) error {
	return func(rs *resolver, v *yaml.Node) error {
		if err := rs.raw(v, regs...); err != nil {
			return err
		}
		rs.tag(tag)
		return nil
	}
}

// suffixed stores a raw value in regs and emits a tag carrying the value.
func suffixed(format string, regs ...string) func(*resolver, *yaml.Node) error {
	return func(rs *resolver, v *yaml.Node) error {
		if err := rs.raw(v, regs...); err != nil {
			return err
		}
		rs.tag(fmt.Sprintf(format, label(v)))
		return nil
	}
}

// group expands a nested option into one edit per non-null member and
// register prefix. The tag is emitted only when a member was set.
func group(tag string, prefixes ...string) func(*resolver, *yaml.Node) error {
	return func(rs *resolver, v *yaml.Node) error {
		if v.Kind != yaml.MappingNode {
			return types.Errorf(types.ErrKindUnsupportedOptionValue, "option %q: expected a group", rs.key)
		}
		found := false
		for i := 0; i+1 < len(v.Content); i += 2 {
			member, val := v.Content[i].Value, v.Content[i+1]
			if isNull(val) {
				continue
			}
			found = true
			value, err := rs.value(rs.key+"."+member, val)
			if err != nil {
				return err
			}
			for _, p := range prefixes {
				if err := rs.set(p+member, value); err != nil {
					return err
				}
			}
		}
		if found {
			rs.tag(tag)
		}
		return nil
	}
}

func interleave(rs *resolver, v *yaml.Node) error {
	if err := rs.mapped("g_ddr_interleave_ways", v); err != nil {
		return err
	}
	if ways := label(v); ways != "-1" {
		rs.tag(ways + "wayddrintlg")
	}
	return nil
}
