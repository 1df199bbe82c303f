// Package byteview reinterprets numeric sample slices as raw bytes without
// copying. Views share memory with their source and use native byte
// order, so hashing a view hashes the exact in-memory image of the samples.
package byteview

import (
	"errors"
	"unsafe"
)

// ErrUnitMismatch is returned when a byte length is not a whole number of samples.
var ErrUnitMismatch = errors.New("byte length is not a multiple of the sample size")

// Sample is a fixed-size numeric sample type.
type Sample interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// Size returns the size in bytes of one sample of type T.
func Size[T Sample]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Bytes returns the bytes backing samples. The result aliases samples and
// is exactly len(samples) × Size[T]() bytes long.
func Bytes[T Sample](samples []T) []byte {
	if len(samples) == 0 {
		return []byte{}
	}
	n := len(samples) * Size[T]()
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(samples))), n)
}
