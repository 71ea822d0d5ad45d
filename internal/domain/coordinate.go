package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidCoordinate is matched by every coordinate decoding failure.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

var (
	// ErrMissingValue means the coordinate cell was empty or absent.
	ErrMissingValue = fmt.Errorf("%w: missing value", ErrInvalidCoordinate)

	// ErrInsufficientPrecision means too few digits remained after stripping.
	ErrInsufficientPrecision = fmt.Errorf("%w: insufficient precision", ErrInvalidCoordinate)

	// ErrUnparseableCoordinate means the recomposed decimal did not parse.
	ErrUnparseableCoordinate = fmt.Errorf("%w: unparseable", ErrInvalidCoordinate)
)

// Coordinate axes, used as field names in errors and metrics.
const (
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
)

// fixedPoint describes a digit string with an implied decimal point after
// intDigits digits.
type fixedPoint struct {
	field      string
	intDigits  int
	fracDigits int
}

var (
	latitudeFormat  = fixedPoint{field: FieldLatitude, intDigits: 2, fracDigits: 4}
	longitudeFormat = fixedPoint{field: FieldLongitude, intDigits: 1, fracDigits: 4}
)

// DecodeError reports which field failed and what the raw cell held.
type DecodeError struct {
	Field string
	Raw   string
	Err   error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrMissingValue) {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeLatitude decodes a fixed-point latitude with 2 integer and 4 fraction
// digits: "519617818" → 51.9617. A nil raw value is missing.
func DecodeLatitude(raw *string) (float64, error) {
	return latitudeFormat.decode(raw)
}

// DecodeLongitude decodes a fixed-point longitude with 1 integer and 4
// fraction digits: "76285726" → 7.6285. A nil raw value is missing.
func DecodeLongitude(raw *string) (float64, error) {
	return longitudeFormat.decode(raw)
}

func (f fixedPoint) decode(raw *string) (float64, error) {
	if raw == nil {
		return 0, &DecodeError{Field: f.field, Err: ErrMissingValue}
	}

	digits := stripNonDigits(*raw)
	if len(digits) < f.intDigits+f.fracDigits {
		return 0, &DecodeError{Field: f.field, Raw: *raw, Err: ErrInsufficientPrecision}
	}

	// Digits past the last fraction digit are dropped, not rounded.
	composed := digits[:f.intDigits] + "." + digits[f.intDigits:f.intDigits+f.fracDigits]
	v, err := strconv.ParseFloat(composed, 64)
	if err != nil {
		return 0, &DecodeError{Field: f.field, Raw: *raw, Err: fmt.Errorf("%w: %w", ErrUnparseableCoordinate, err)}
	}
	return v, nil
}

// stripNonDigits keeps decimal digits of any script in their original order,
// folded to ASCII.
func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if d, ok := digitValue(r); ok {
			b.WriteByte('0' + d)
		}
	}
	return b.String()
}

// digitValue returns the value of a Unicode decimal digit. Every run in
// unicode.Nd starts at a zero, so the offset into the run gives the value.
func digitValue(r rune) (byte, bool) {
	if !unicode.Is(unicode.Nd, r) {
		return 0, false
	}
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return byte((r - lo) % 10), true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return byte((r - lo) % 10), true
		}
	}
	return 0, false
}
