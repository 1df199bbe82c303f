package ciid

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind is the decode path a file is fingerprinted with.
type Kind int

const (
	// KindRaw files are decoded by the native RAW decoder.
	KindRaw Kind = iota
	// KindCompressed files are decoded by the compressed image decoder.
	KindCompressed
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindCompressed:
		return "compressed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Classifier decides which decode path handles a file.
type Classifier interface {
	Classify(path string) (Kind, error)
}

// DefaultCompressedPattern matches JPEG extensions, case-insensitively.
const DefaultCompressedPattern = `(?i)^jpe?g$`

// ExtensionClassifier classifies files by extension. Extensions matching the
// pattern are compressed images; everything else is treated as RAW.
type ExtensionClassifier struct {
	pattern *regexp.Regexp
}

// NewExtensionClassifier compiles pattern, which is matched against the
// extension without its leading dot. An empty pattern selects DefaultCompressedPattern.
func NewExtensionClassifier(pattern string) (*ExtensionClassifier, error) {
	if pattern == "" {
		pattern = DefaultCompressedPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling extension pattern: %w", err)
	}
	return &ExtensionClassifier{pattern: re}, nil
}

func (c *ExtensionClassifier) Classify(path string) (Kind, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext != "" && c.pattern.MatchString(ext) {
		return KindCompressed, nil
	}
	return KindRaw, nil
}

// jpegMagic is the JPEG start-of-image marker followed by the first marker prefix.
var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// ContentClassifier classifies files by sniffing their leading bytes.
type ContentClassifier struct{}

func (ContentClassifier) Classify(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(jpegMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("reading file header: %w", err)
	}
	if bytes.Equal(head[:n], jpegMagic) {
		return KindCompressed, nil
	}
	return KindRaw, nil
}

var (
	_ Classifier = (*ExtensionClassifier)(nil)
	_ Classifier = ContentClassifier{}
)
