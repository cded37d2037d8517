package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindMalformedLine          ErrKind = iota // text image line with a byte count not divisible by 4
	ErrKindBlockNotFound                         // no sysconfig header in the image
	ErrKindTruncatedBlock                        // header found but no trailer follows
	ErrKindCatalogLoad                           // register catalog missing or malformed
	ErrKindUnknownRegister                       // name or id absent from the catalog
	ErrKindInvalidMappingValue                   // label absent from a register's mapping
	ErrKindMappingDecode                         // raw value has no label in the mapping
	ErrKindUnsupportedOptionValue                // option value cannot be translated
	ErrKindChecksumMismatch                      // stored block checksum disagrees with contents
)

var kindNames = [...]string{
	ErrKindMalformedLine:          "MalformedLine",
	ErrKindBlockNotFound:          "BlockNotFound",
	ErrKindTruncatedBlock:         "TruncatedBlock",
	ErrKindCatalogLoad:            "CatalogLoadError",
	ErrKindUnknownRegister:        "UnknownRegister",
	ErrKindInvalidMappingValue:    "InvalidMappingValue",
	ErrKindMappingDecode:          "MappingDecodeError",
	ErrKindUnsupportedOptionValue: "UnsupportedOptionValue",
	ErrKindChecksumMismatch:       "ChecksumMismatch",
}

func (k ErrKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrKind(%d)", int(k))
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrTruncatedBlock) matches any truncated-block failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around cause.
func Wrap(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinels for errors.Is comparisons.
var (
	ErrMalformedLine          = &Error{Kind: ErrKindMalformedLine, Msg: "malformed image line"}
	ErrBlockNotFound          = &Error{Kind: ErrKindBlockNotFound, Msg: "sysconfig block not found"}
	ErrTruncatedBlock         = &Error{Kind: ErrKindTruncatedBlock, Msg: "sysconfig block truncated"}
	ErrCatalogLoad            = &Error{Kind: ErrKindCatalogLoad, Msg: "cannot load register catalog"}
	ErrUnknownRegister        = &Error{Kind: ErrKindUnknownRegister, Msg: "unknown register"}
	ErrInvalidMappingValue    = &Error{Kind: ErrKindInvalidMappingValue, Msg: "invalid mapping value"}
	ErrMappingDecode          = &Error{Kind: ErrKindMappingDecode, Msg: "mapping decode error"}
	ErrUnsupportedOptionValue = &Error{Kind: ErrKindUnsupportedOptionValue, Msg: "unsupported option value"}
	ErrChecksumMismatch       = &Error{Kind: ErrKindChecksumMismatch, Msg: "sysconfig checksum mismatch"}
)

// -----------------------------------------------------------------------------
// Data model
// -----------------------------------------------------------------------------

// Edit requests that register ID hold Value after the edit pass.
type Edit struct {
	ID    uint32 `json:"id"`
	Value uint32 `json:"value"`
}

func (e Edit) String() string {
	return fmt.Sprintf("0x%08x=0x%08x", e.ID, e.Value)
}

// EditSet is an ordered list of requested edits. Order decides where
// unmatched edits land when they are appended to the block.
type EditSet []Edit

// Add appends an edit and returns the extended set.
func (s EditSet) Add(id, value uint32) EditSet {
	return append(s, Edit{ID: id, Value: value})
}

// Clone returns an independent copy of s.
func (s EditSet) Clone() EditSet {
	if s == nil {
		return nil
	}
	out := make(EditSet, len(s))
	copy(out, s)
	return out
}

// Entry is one (id, value) pair stored in the sysconfig block.
type Entry struct {
	ID    uint32 `json:"id"`
	Value uint32 `json:"value"`
}

// BuildInfo is the firmware build metadata stored at fixed image offsets.
type BuildInfo struct {
	ASICVersion  uint32 `json:"asic_version"`
	BuildID      uint32 `json:"build_id"`
	Builder      string `json:"builder"`
	VersionMajor uint32 `json:"version_major"`
	VersionMinor uint32 `json:"version_minor"`
	Release      bool   `json:"release"`
	Iterations   uint32 `json:"iterations"`
}

// Version formats the firmware version: major in hex, minor in decimal.
func (b BuildInfo) Version() string {
	kind := "Dev"
	if b.Release {
		kind = "Release"
	}
	return fmt.Sprintf("%x.%d %s", b.VersionMajor, b.VersionMinor, kind)
}

// SysconfigVersion is "Original" for an image that was never edited and the
// iteration count otherwise.
func (b BuildInfo) SysconfigVersion() string {
	if b.Iterations == 0 {
		return "Original"
	}
	return fmt.Sprintf("%d", b.Iterations)
}
