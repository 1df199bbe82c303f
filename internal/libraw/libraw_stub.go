//go:build !cgo || !libraw

package libraw

import "ciid-go/internal/ciid"

// Available reports whether LibRaw was compiled in.
const Available = false

// NewHandle always fails with ErrUnavailable.
func (Library) NewHandle() (ciid.RawHandle, error) {
	return nil, ErrUnavailable
}
