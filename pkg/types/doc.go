// Package types defines the shared data model for reading and editing the
// sysconfig block of a Leo flash image: edit requests, block entries, build
// metadata, and the closed set of typed errors every component returns.
//
// Errors carry a stable ErrKind so callers can branch with errors.Is against
// the exported sentinels (ErrTruncatedBlock, ErrUnknownRegister, ...)
// rather than matching message text.
//
// This package has no dependencies beyond the standard library.
package types
