package testutil

import (
	"fmt"
	"sync"

	"ciid-go/internal/ciid"
)

// FakeImageDecoder returns canned pixel buffers per path.
type FakeImageDecoder struct {
	mu     sync.Mutex
	pixels map[string][]byte
	errs   map[string]error
}

func NewFakeImageDecoder() *FakeImageDecoder {
	return &FakeImageDecoder{
		pixels: make(map[string][]byte),
		errs:   make(map[string]error),
	}
}

// Set registers the decoded pixels for path.
func (d *FakeImageDecoder) Set(path string, pixels []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pixels[path] = pixels
}

// Fail makes DecodePixels return err for path.
func (d *FakeImageDecoder) Fail(path string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs[path] = err
}

func (d *FakeImageDecoder) DecodePixels(path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.errs[path]; ok {
		return nil, err
	}
	p, ok := d.pixels[path]
	if !ok {
		return nil, fmt.Errorf("no such image: %s", path)
	}
	return p, nil
}

// RawStep names a RawHandle call that FakeRawLibrary can be told to fail.
type RawStep string

const (
	RawStepInit   RawStep = "init"
	RawStepOpen   RawStep = "open"
	RawStepUnpack RawStep = "unpack"
	RawStepSensor RawStep = "sensor"
)

// FakeRawLibrary hands out handles serving canned sensor buffers per path,
// and records every handle so tests can check they were closed.
type FakeRawLibrary struct {
	mu      sync.Mutex
	buffers map[string]ciid.RawBuffer
	fail    map[RawStep]error
	handles []*FakeRawHandle
}

func NewFakeRawLibrary() *FakeRawLibrary {
	return &FakeRawLibrary{
		buffers: make(map[string]ciid.RawBuffer),
		fail:    make(map[RawStep]error),
	}
}

// Set registers the sensor buffer returned for path.
func (l *FakeRawLibrary) Set(path string, buf ciid.RawBuffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buffers[path] = buf
}

// SetSensor registers a tightly packed buffer of pitch × rows bytes filled
// with a repeating byte pattern.
func (l *FakeRawLibrary) SetSensor(path string, pitch, rows int) ciid.RawBuffer {
	data := make([]byte, pitch*rows)
	for i := range data {
		data[i] = byte(i % 251)
	}
	buf := ciid.RawBuffer{Data: data, Pitch: pitch, Rows: rows}
	l.Set(path, buf)
	return buf
}

// FailAt makes every handle fail the given step with err.
func (l *FakeRawLibrary) FailAt(step RawStep, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail[step] = err
}

// Handles returns every handle created so far.
func (l *FakeRawLibrary) Handles() []*FakeRawHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*FakeRawHandle(nil), l.handles...)
}

func (l *FakeRawLibrary) NewHandle() (ciid.RawHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fail[RawStepInit]; err != nil {
		return nil, err
	}
	h := &FakeRawHandle{lib: l}
	l.handles = append(l.handles, h)
	return h, nil
}

// FakeRawHandle is a handle created by FakeRawLibrary.
type FakeRawHandle struct {
	lib      *FakeRawLibrary
	path     string
	unpacked bool
	closes   int
}

// Closes returns how many times Close was called.
func (h *FakeRawHandle) Closes() int {
	h.lib.mu.Lock()
	defer h.lib.mu.Unlock()
	return h.closes
}

func (h *FakeRawHandle) Open(path string) error {
	h.lib.mu.Lock()
	defer h.lib.mu.Unlock()
	if err := h.lib.fail[RawStepOpen]; err != nil {
		return err
	}
	if _, ok := h.lib.buffers[path]; !ok {
		return fmt.Errorf("no such raw file: %s", path)
	}
	h.path = path
	return nil
}

func (h *FakeRawHandle) Unpack() error {
	h.lib.mu.Lock()
	defer h.lib.mu.Unlock()
	if err := h.lib.fail[RawStepUnpack]; err != nil {
		return err
	}
	if h.path == "" {
		return fmt.Errorf("unpack before open")
	}
	h.unpacked = true
	return nil
}

func (h *FakeRawHandle) Sensor() (ciid.RawBuffer, error) {
	h.lib.mu.Lock()
	defer h.lib.mu.Unlock()
	if err := h.lib.fail[RawStepSensor]; err != nil {
		return ciid.RawBuffer{}, err
	}
	if !h.unpacked {
		return ciid.RawBuffer{}, fmt.Errorf("sensor before unpack")
	}
	return h.lib.buffers[h.path], nil
}

func (h *FakeRawHandle) Close() {
	h.lib.mu.Lock()
	defer h.lib.mu.Unlock()
	h.closes++
}

var (
	_ ciid.ImageDecoder = (*FakeImageDecoder)(nil)
	_ ciid.RawLibrary   = (*FakeRawLibrary)(nil)
	_ ciid.RawHandle    = (*FakeRawHandle)(nil)
)
