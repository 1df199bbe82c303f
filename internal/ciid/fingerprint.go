package ciid

import (
	"fmt"
	"hash"
	"path/filepath"
)

// ImageDecoder decodes a compressed image into its canonical pixel buffer.
type ImageDecoder interface {
	DecodePixels(path string) ([]byte, error)
}

// RawBuffer is a view over unpacked sensor data. Data is owned by the
// RawHandle that produced it and is only valid until the handle is closed.
type RawBuffer struct {
	Data  []byte
	Pitch int // bytes per row, including padding
	Rows  int
}

// Len is the number of bytes the buffer must span: pitch × rows.
func (b RawBuffer) Len() int {
	return b.Pitch * b.Rows
}

// RawLibrary creates handles to a native RAW decoder.
type RawLibrary interface {
	NewHandle() (RawHandle, error)
}

// RawHandle is the open/unpack/query/close lifecycle of a native RAW decoder.
// Close must be called exactly once, whatever happened before it.
type RawHandle interface {
	Open(path string) error
	Unpack() error
	Sensor() (RawBuffer, error)
	Close()
}

// Fingerprinter computes content fingerprints over decoded pixel data.
type Fingerprinter struct {
	classifier Classifier
	images     ImageDecoder
	raw        RawLibrary
	newHash    func() hash.Hash
	logger     Logger
}

// NewFingerprinter creates a Fingerprinter. newHash is called once per file.
// Either decoder may be nil, in which case files of that kind fail with ErrUnsupportedKind.
func NewFingerprinter(classifier Classifier, images ImageDecoder, raw RawLibrary, newHash func() hash.Hash, logger Logger) *Fingerprinter {
	return &Fingerprinter{
		classifier: classifier,
		images:     images,
		raw:        raw,
		newHash:    newHash,
		logger:     logger,
	}
}

// Fingerprint returns the digest of the pixel data of the file at path.
func (f *Fingerprinter) Fingerprint(path string) ([]byte, error) {
	kind, err := f.classifier.Classify(path)
	if err != nil {
		return nil, fmt.Errorf("classifying file: %w", err)
	}

	h := f.newHash()
	switch kind {
	case KindCompressed:
		err = f.hashCompressed(path, h)
	case KindRaw:
		err = f.hashRaw(path, h)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("fingerprinting %s file: %w", describeExt(path), err)
	}

	f.logger.Debug("fingerprinted", "path", path, "kind", kind.String())
	return h.Sum(nil), nil
}

func (f *Fingerprinter) hashCompressed(path string, h hash.Hash) error {
	if f.images == nil {
		return ErrUnsupportedKind
	}
	pixels, err := f.images.DecodePixels(path)
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	h.Write(pixels)
	return nil
}

func (f *Fingerprinter) hashRaw(path string, h hash.Hash) error {
	if f.raw == nil {
		return ErrUnsupportedKind
	}

	handle, err := f.raw.NewHandle()
	if err != nil {
		return fmt.Errorf("initializing raw decoder: %w", err)
	}
	defer handle.Close()

	if err := handle.Open(path); err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	if err := handle.Unpack(); err != nil {
		return fmt.Errorf("unpacking file: %w", err)
	}

	buf, err := handle.Sensor()
	if err != nil {
		return fmt.Errorf("reading sensor data: %w", err)
	}
	if buf.Data == nil {
		return ErrNullBuffer
	}
	if len(buf.Data) != buf.Len() {
		return fmt.Errorf("%w: have %d bytes, pitch %d × rows %d = %d",
			ErrBufferSize, len(buf.Data), buf.Pitch, buf.Rows, buf.Len())
	}

	h.Write(buf.Data)
	return nil
}

func describeExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return "<no extension>"
}
