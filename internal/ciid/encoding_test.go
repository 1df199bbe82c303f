package ciid_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ciid-go/internal/ciid"
)

func mustEncoder(t *testing.T, scheme ciid.Scheme, digits int, alphabet string) *ciid.Encoder {
	t.Helper()
	e, err := ciid.NewEncoder(scheme, digits, alphabet)
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}
	return e
}

func TestEncoder_Encode_Sample(t *testing.T) {
	e := mustEncoder(t, ciid.SchemeDecimal, 0, "")

	got, err := e.Encode(time.UnixMilli(1234567890123), []byte{0x01, 0x02, 0x03, 0x04})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if want := "1234567890123-01020304"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncoder_EncodeTimestamp_Width(t *testing.T) {
	ts := time.UnixMilli(1483617175960)
	tests := []struct {
		digits int
		want   string
	}{
		{0, "1483617175960"},
		{5, "1483617175960"},
		{13, "1483617175960"},
		{14, "01483617175960"},
		{20, "00000001483617175960"},
	}
	for _, tt := range tests {
		e := mustEncoder(t, ciid.SchemeDecimal, tt.digits, "")
		got, err := e.EncodeTimestamp(ts)
		if err != nil {
			t.Fatalf("EncodeTimestamp() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("digits %d: EncodeTimestamp() = %q, want %q", tt.digits, got, tt.want)
		}
	}
}

func TestEncoder_EncodeTimestamp_Epoch(t *testing.T) {
	dec := mustEncoder(t, ciid.SchemeDecimal, ciid.DefaultTimestampDigits, "")
	if got, _ := dec.EncodeTimestamp(time.UnixMilli(0)); got != "00000000000000" {
		t.Errorf("decimal epoch = %q", got)
	}

	b32 := mustEncoder(t, ciid.SchemeBase32, 0, "")
	if got, _ := b32.EncodeTimestamp(time.UnixMilli(0)); got != "0000000000000000" {
		t.Errorf("base32 epoch = %q", got)
	}
}

func TestEncoder_EncodeTimestamp_BeforeEpoch(t *testing.T) {
	for _, scheme := range []ciid.Scheme{ciid.SchemeDecimal, ciid.SchemeBase32} {
		e := mustEncoder(t, scheme, ciid.DefaultTimestampDigits, "")
		_, err := e.EncodeTimestamp(time.UnixMilli(-1))
		if !errors.Is(err, ciid.ErrBeforeEpoch) {
			t.Errorf("%s: EncodeTimestamp() error = %v, want ErrBeforeEpoch", scheme, err)
		}
	}
}

func TestEncoder_ZoneNeutral(t *testing.T) {
	minusOne := time.FixedZone("-01:00", -3600)
	local := time.Date(1969, 12, 31, 23, 0, 0, 0, minusOne)
	epoch := time.Unix(0, 0).UTC()

	for _, scheme := range []ciid.Scheme{ciid.SchemeDecimal, ciid.SchemeBase32} {
		e := mustEncoder(t, scheme, ciid.DefaultTimestampDigits, "")
		a, err := e.EncodeTimestamp(local)
		if err != nil {
			t.Fatalf("%s: EncodeTimestamp() error = %v", scheme, err)
		}
		b, _ := e.EncodeTimestamp(epoch)
		if a != b {
			t.Errorf("%s: %q != %q for the same instant", scheme, a, b)
		}
	}
}

func TestEncoder_Monotonic(t *testing.T) {
	base := time.UnixMilli(1483617175960)
	deltas := []struct {
		name string
		next time.Time
	}{
		{"millisecond", base.Add(time.Millisecond)},
		{"second", base.Add(time.Second)},
		{"minute", base.Add(time.Minute)},
		{"hour", base.Add(time.Hour)},
		{"day", base.AddDate(0, 0, 1)},
		{"month", base.AddDate(0, 1, 0)},
		{"year", base.AddDate(1, 0, 0)},
		{"century", base.AddDate(100, 0, 0)},
	}

	for _, scheme := range []ciid.Scheme{ciid.SchemeDecimal, ciid.SchemeBase32} {
		e := mustEncoder(t, scheme, ciid.DefaultTimestampDigits, "")
		first, err := e.EncodeTimestamp(base)
		if err != nil {
			t.Fatalf("EncodeTimestamp() error = %v", err)
		}
		for _, d := range deltas {
			t.Run(string(scheme)+"/"+d.name, func(t *testing.T) {
				next, err := e.EncodeTimestamp(d.next)
				if err != nil {
					t.Fatalf("EncodeTimestamp() error = %v", err)
				}
				if !(first < next) {
					t.Errorf("%q is not before %q", first, next)
				}
			})
		}
	}
}

func TestEncoder_MonotonicProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	// Year 2500 in milliseconds.
	const maxMillis = 16725225600000

	for _, scheme := range []ciid.Scheme{ciid.SchemeDecimal, ciid.SchemeBase32} {
		e := mustEncoder(t, scheme, ciid.DefaultTimestampDigits, "")

		properties.Property(string(scheme)+" encoding preserves timestamp order", prop.ForAll(
			func(a, b int64) bool {
				sa, err := e.EncodeTimestamp(time.UnixMilli(a))
				if err != nil {
					return false
				}
				sb, err := e.EncodeTimestamp(time.UnixMilli(b))
				if err != nil {
					return false
				}
				switch {
				case a < b:
					return sa < sb
				case a > b:
					return sa > sb
				default:
					return sa == sb
				}
			},
			gen.Int64Range(0, maxMillis),
			gen.Int64Range(0, maxMillis),
		))

		properties.Property(string(scheme)+" fingerprint encoding preserves byte order", prop.ForAll(
			func(a, b []byte) bool {
				if len(a) != len(b) {
					return true
				}
				return strings.Compare(e.EncodeFingerprint(a), e.EncodeFingerprint(b)) == compareBytes(a, b)
			},
			gen.SliceOfN(5, gen.UInt8()),
			gen.SliceOfN(5, gen.UInt8()),
		))
	}

	properties.TestingRun(t)
}

func compareBytes(a, b []byte) int {
	return strings.Compare(string(a), string(b))
}

func TestEncoder_EncodeFingerprint(t *testing.T) {
	fp := []byte{0x01, 0xAB, 0xFF}

	dec := mustEncoder(t, ciid.SchemeDecimal, 0, "")
	if got := dec.EncodeFingerprint(fp); got != "01abff" {
		t.Errorf("hex EncodeFingerprint() = %q, want %q", got, "01abff")
	}

	custom := mustEncoder(t, ciid.SchemeDecimal, 0, "abcdefghijklmnop")
	if got := custom.EncodeFingerprint(fp); got != "abklpp" {
		t.Errorf("custom EncodeFingerprint() = %q, want %q", got, "abklpp")
	}

	b32 := mustEncoder(t, ciid.SchemeBase32, 0, "")
	digest := make([]byte, 32)
	if got := b32.EncodeFingerprint(digest); len(got) != 52 || strings.Trim(got, "0") != "" {
		t.Errorf("base32 EncodeFingerprint(zero digest) = %q, want 52 zeros", got)
	}
}

func TestEncoder_Encode_NoHash(t *testing.T) {
	e := mustEncoder(t, ciid.SchemeDecimal, ciid.DefaultTimestampDigits, "")
	got, err := e.Encode(time.UnixMilli(1483617175960), nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got != "01483617175960" {
		t.Errorf("Encode() = %q, want %q", got, "01483617175960")
	}
	if strings.Contains(got, ciid.Separator) {
		t.Errorf("Encode() = %q contains separator", got)
	}
}

func TestEncoder_Encode_Base32(t *testing.T) {
	e := mustEncoder(t, ciid.SchemeBase32, 0, "")
	if e.Scheme() != ciid.SchemeBase32 {
		t.Errorf("Scheme() = %q", e.Scheme())
	}

	got, err := e.Encode(time.UnixMilli(1483617175960), make([]byte, 32))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	ts, fp, ok := strings.Cut(got, ciid.Separator)
	if !ok {
		t.Fatalf("Encode() = %q has no separator", got)
	}
	if len(ts) != 16 {
		t.Errorf("timestamp segment %q has length %d, want 16", ts, len(ts))
	}
	if len(fp) != 52 {
		t.Errorf("fingerprint segment %q has length %d, want 52", fp, len(fp))
	}
	if strings.ContainsAny(got, "=ILOUilou") {
		t.Errorf("Encode() = %q contains padding or excluded symbols", got)
	}
}

func TestNewEncoder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		scheme   ciid.Scheme
		digits   int
		alphabet string
	}{
		{"negative digits", ciid.SchemeDecimal, -1, ""},
		{"unknown scheme", ciid.Scheme("base64"), 14, ""},
		{"short alphabet", ciid.SchemeDecimal, 14, "0123456789abcde"},
		{"long alphabet", ciid.SchemeDecimal, 14, "0123456789abcdefg"},
		{"descending alphabet", ciid.SchemeDecimal, 14, "fedcba9876543210"},
		{"repeated symbol", ciid.SchemeDecimal, 14, "0123456789abcdee"},
		{"separator in alphabet", ciid.SchemeDecimal, 14, "-0123456789abcde"},
		{"space in alphabet", ciid.SchemeDecimal, 14, " 0123456789abcde"},
		{"padding in alphabet", ciid.SchemeBase32, 14, "0123456789=ABCDEFGHJKMNPQRSTVWXY"},
		{"hex alphabet for base32", ciid.SchemeBase32, 14, ciid.HexAlphabet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ciid.NewEncoder(tt.scheme, tt.digits, tt.alphabet); err == nil {
				t.Error("NewEncoder() expected error")
			}
		})
	}
}
