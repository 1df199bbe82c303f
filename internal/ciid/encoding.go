package ciid

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Scheme selects how timestamps and fingerprints are rendered.
type Scheme string

const (
	// SchemeDecimal renders zero-padded decimal milliseconds and a hex fingerprint.
	SchemeDecimal Scheme = "decimal"
	// SchemeBase32 renders both segments in a sort-stable base-32 alphabet.
	SchemeBase32 Scheme = "base32"
)

const (
	// DefaultTimestampDigits is the minimum width of the decimal timestamp segment.
	DefaultTimestampDigits = 14

	// HexAlphabet is the default 16-symbol alphabet for decimal identifiers.
	HexAlphabet = "0123456789abcdef"

	// CrockfordAlphabet is the default 32-symbol alphabet for base-32 identifiers.
	CrockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

	// Separator joins the timestamp and fingerprint segments.
	Separator = "-"
)

// base32TimestampBytes is 8 bytes of millis padded to a whole 5-byte chunk
// multiple, so the segment is a fixed 16 symbols with no partial chunk.
const base32TimestampBytes = 10

// Encoder renders identifiers whose byte order matches the numeric order of
// their source timestamps.
type Encoder struct {
	scheme   Scheme
	digits   int
	alphabet string
	b32      *base32.Encoding
}

// NewEncoder creates an Encoder. digits is the minimum width of the decimal
// timestamp segment and is ignored by SchemeBase32. An empty alphabet selects
// the scheme's default.
func NewEncoder(scheme Scheme, digits int, alphabet string) (*Encoder, error) {
	if digits < 0 {
		return nil, fmt.Errorf("timestamp digits must not be negative, got %d", digits)
	}

	e := &Encoder{scheme: scheme, digits: digits, alphabet: alphabet}
	switch scheme {
	case SchemeDecimal:
		if e.alphabet == "" {
			e.alphabet = HexAlphabet
		}
		if err := validateAlphabet(e.alphabet, 16); err != nil {
			return nil, err
		}
	case SchemeBase32:
		if e.alphabet == "" {
			e.alphabet = CrockfordAlphabet
		}
		if err := validateAlphabet(e.alphabet, 32); err != nil {
			return nil, err
		}
		e.b32 = base32.NewEncoding(e.alphabet).WithPadding(base32.NoPadding)
	default:
		return nil, fmt.Errorf("unknown identifier scheme: %q", scheme)
	}
	return e, nil
}

// validateAlphabet checks that symbol order is monotonic so that comparing
// encoded strings compares the encoded values.
func validateAlphabet(alphabet string, size int) error {
	if len(alphabet) != size {
		return fmt.Errorf("alphabet must have %d symbols, got %d", size, len(alphabet))
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if c <= ' ' || c > '~' || c == Separator[0] || c == '=' {
			return fmt.Errorf("alphabet symbol %q at %d is not allowed", c, i)
		}
		if i > 0 && c <= alphabet[i-1] {
			return fmt.Errorf("alphabet is not strictly ascending at %d (%q after %q)", i, c, alphabet[i-1])
		}
	}
	return nil
}

// Scheme returns the encoder's scheme.
func (e *Encoder) Scheme() Scheme { return e.scheme }

// EncodeTimestamp renders the timestamp segment. The zone of t is irrelevant:
// two times for the same instant encode identically.
func (e *Encoder) EncodeTimestamp(t time.Time) (string, error) {
	ms := t.UnixMilli()
	if ms < 0 {
		return "", fmt.Errorf("%w: %s", ErrBeforeEpoch, t.Format(time.RFC3339Nano))
	}

	switch e.scheme {
	case SchemeBase32:
		var buf [base32TimestampBytes]byte
		binary.BigEndian.PutUint64(buf[base32TimestampBytes-8:], uint64(ms))
		return e.b32.EncodeToString(buf[:]), nil
	default:
		s := strconv.FormatInt(ms, 10)
		if pad := e.digits - len(s); pad > 0 {
			s = strings.Repeat("0", pad) + s
		}
		return s, nil
	}
}

// EncodeFingerprint renders the fingerprint segment.
func (e *Encoder) EncodeFingerprint(fp []byte) string {
	if e.scheme == SchemeBase32 {
		return e.b32.EncodeToString(fp)
	}

	var sb strings.Builder
	sb.Grow(len(fp) * 2)
	for _, b := range fp {
		sb.WriteByte(e.alphabet[b>>4])
		sb.WriteByte(e.alphabet[b&0x0F])
	}
	return sb.String()
}

// Encode renders the full identifier. A nil fingerprint yields the timestamp
// segment alone, without separator.
func (e *Encoder) Encode(t time.Time, fp []byte) (string, error) {
	ts, err := e.EncodeTimestamp(t)
	if err != nil {
		return "", err
	}
	if fp == nil {
		return ts, nil
	}
	return ts + Separator + e.EncodeFingerprint(fp), nil
}
