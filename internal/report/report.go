// Package report renders the registers configured in a sysconfig block.
//
// A fixed shortlist of registers is always printed first; when one of them
// is absent from the block, its default value is printed with a marker. All
// other entries follow in block order unless the short form is requested.
// Entries whose id the catalog does not know are left out.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/leosyscfg/internal/catalog"
	"github.com/joshuapare/leosyscfg/internal/locate"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// ShortlistEntry names a register that is always reported.
type ShortlistEntry struct {
	Name    string
	Default uint32
}

// DefaultShortlist is reported ahead of everything else.
var DefaultShortlist = []ShortlistEntry{
	{Name: "g_ddr_refresh_mode", Default: 0},
	{Name: "g_ddr_page_close_mode", Default: 0},
}

const (
	defaultMarker = "*"
	defaultNote   = " * Unconfigured. Using default value"
	ruleWidth     = 54
)

// Options configures report construction.
type Options struct {
	// Shortlist overrides DefaultShortlist when non-nil.
	Shortlist []ShortlistEntry
	// Short limits the report to the shortlist.
	Short bool
}

// Line is one reported register value.
type Line struct {
	Name    string `json:"name"`
	Display string `json:"display"`
	ID      uint32 `json:"id"`
	Raw     uint32 `json:"raw"`
	Label   string `json:"label,omitempty"`
	Value   int64  `json:"value"`

	Shortlisted bool `json:"shortlisted,omitempty"`
	// Defaulted marks a shortlist register absent from the block.
	Defaulted bool `json:"defaulted,omitempty"`
}

// Report is the decoded view of one block.
type Report struct {
	Build *types.BuildInfo `json:"build,omitempty"`
	Lines []Line           `json:"registers"`
}

// Build decodes blk against cat.
func Build(blk *locate.Block, cat *catalog.Catalog, opts Options) (*Report, error) {
	shortlist := opts.Shortlist
	if shortlist == nil {
		shortlist = DefaultShortlist
	}

	entries, err := blk.Entries()
	if err != nil {
		return nil, err
	}

	inShortlist := make(map[string]bool, len(shortlist))
	for _, s := range shortlist {
		inShortlist[s.Name] = true
	}

	found := make(map[string][]Line)
	var rest []Line
	for _, e := range entries {
		d, err := cat.DecodeValue(e.ID, e.Value)
		if errors.Is(err, types.ErrUnknownRegister) {
			continue
		}
		if err != nil {
			return nil, err
		}

		line := lineFor(d)
		if inShortlist[d.Name] {
			line.Shortlisted = true
			found[d.Name] = append(found[d.Name], line)
			continue
		}
		if !opts.Short {
			rest = append(rest, line)
		}
	}

	rep := &Report{Lines: make([]Line, 0, len(shortlist)+len(rest))}
	for _, s := range shortlist {
		if lines, ok := found[s.Name]; ok {
			rep.Lines = append(rep.Lines, lines...)
			continue
		}
		reg, err := cat.Lookup(s.Name)
		if err != nil {
			return nil, err
		}
		rep.Lines = append(rep.Lines, Line{
			Name:        reg.Name,
			Display:     reg.DisplayName(),
			ID:          reg.ID,
			Raw:         s.Default,
			Value:       int64(s.Default),
			Shortlisted: true,
			Defaulted:   true,
		})
	}
	rep.Lines = append(rep.Lines, rest...)
	return rep, nil
}

func lineFor(d catalog.Decoded) Line {
	return Line{
		Name:    d.Name,
		Display: d.Display,
		ID:      d.ID,
		Raw:     d.Raw,
		Label:   d.Label,
		Value:   d.Value,
	}
}

// Text renders the line as "<hex>   <dec>    <display>".
func (l Line) Text() string {
	name := l.Display
	if l.Label != "" {
		if _, err := strconv.ParseInt(l.Label, 10, 64); err != nil {
			name += " (" + l.Label + ")"
		}
	}
	if l.Defaulted {
		name += defaultMarker
	}
	return fmt.Sprintf("0x%08x   %8d    %s", uint32(l.Value), l.Value, name)
}

// HasDefaults reports whether any shortlist register fell back to its default.
func (r *Report) HasDefaults() bool {
	for _, l := range r.Lines {
		if l.Defaulted {
			return true
		}
	}
	return false
}

// WriteText renders the report as the vendor tooling prints it.
func (r *Report) WriteText(w io.Writer) error {
	var sb strings.Builder
	if r.Build != nil {
		writeBuild(&sb, *r.Build)
	}

	fmt.Fprintf(&sb, "%10s %10s    %s\n", "value(hex)", "value(dec)", "reg name")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, l := range r.Lines {
		sb.WriteString(l.Text())
		sb.WriteByte('\n')
	}
	if r.HasDefaults() {
		sb.WriteString("\n" + defaultNote + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteBuildInfo renders build metadata on its own.
func WriteBuildInfo(w io.Writer, info types.BuildInfo) error {
	var sb strings.Builder
	writeBuild(&sb, info)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBuild(sb *strings.Builder, info types.BuildInfo) {
	sb.WriteString("\n")
	fmt.Fprintf(sb, "FW Version: %s\n", info.Version())
	fmt.Fprintf(sb, "BuildId: %d\n", info.BuildID)
	fmt.Fprintf(sb, "Builder: %s\n", info.Builder)
	fmt.Fprintf(sb, "Leo ASIC Version: %x\n", info.ASICVersion)
	fmt.Fprintf(sb, "Sysconfig Version %s\n", info.SysconfigVersion())
	sb.WriteString("\n")
}
