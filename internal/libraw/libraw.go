//go:build cgo && libraw

package libraw

/*
#cgo LDFLAGS: -lraw
#include <stdlib.h>
#include <libraw/libraw.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"ciid-go/internal/byteview"
	"ciid-go/internal/ciid"
)

// Available reports whether LibRaw was compiled in.
const Available = true

// NewHandle allocates a LibRaw processor.
func (Library) NewHandle() (ciid.RawHandle, error) {
	data := C.libraw_init(0)
	if data == nil {
		return nil, errors.New("libraw_init returned null")
	}
	return &handle{data: data}, nil
}

// handle owns one libraw_data_t. Sensor buffers returned by it point into
// LibRaw's memory and are invalid after Close.
type handle struct {
	data *C.libraw_data_t
}

func (h *handle) Open(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	if code := C.libraw_open_file(h.data, cpath); code != 0 {
		return codeError(code)
	}
	return nil
}

func (h *handle) Unpack() error {
	if code := C.libraw_unpack(h.data); code != 0 {
		return codeError(code)
	}
	return nil
}

func (h *handle) Sensor() (ciid.RawBuffer, error) {
	raw := h.data.rawdata.raw_image
	if raw == nil {
		return ciid.RawBuffer{}, ciid.ErrNullBuffer
	}

	pitch := int(h.data.rawdata.sizes.raw_pitch)
	rows := int(h.data.rawdata.sizes.raw_height)
	n := pitch * rows

	// raw_image is an array of 16-bit samples; pitch is in bytes.
	if n%byteview.Size[uint16]() != 0 {
		return ciid.RawBuffer{}, fmt.Errorf("%w: pitch %d × rows %d", byteview.ErrUnitMismatch, pitch, rows)
	}
	samples := unsafe.Slice((*uint16)(unsafe.Pointer(raw)), n/byteview.Size[uint16]())

	return ciid.RawBuffer{
		Data:  byteview.Bytes(samples),
		Pitch: pitch,
		Rows:  rows,
	}, nil
}

func (h *handle) Close() {
	if h.data != nil {
		C.libraw_close(h.data)
		h.data = nil
	}
}

func codeError(code C.int) error {
	msg := C.GoString(C.libraw_strerror(code))
	return fmt.Errorf("libraw error %d: %s", int(code), msg)
}
