// Package libraw binds the LibRaw C library as a ciid.RawLibrary.
//
// The binding needs cgo plus LibRaw's headers and shared library, and is
// only compiled with the libraw build tag:
//
//	go build -tags libraw ./cmd/ciid
//
// Without it a stub is built whose handles fail with ErrUnavailable, so the
// rest of the tool still works and JPEG files can still be fingerprinted.
package libraw

import "errors"

// ErrUnavailable is returned by the stub when LibRaw was not compiled in.
var ErrUnavailable = errors.New("libraw support not compiled in")

// Library creates LibRaw handles.
type Library struct{}

// New returns the LibRaw library.
func New() Library { return Library{} }
