package dataprocessing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apierrors "bvmtdash/internal/errors"
)

// Convention says how plain numbers in metric cells are read
type Convention string

const (
	// ConventionPercent reads plain numbers as percentages already (12.34 is 12.34%)
	ConventionPercent Convention = "percent"
	// ConventionFraction reads plain numbers as fractions (0.1234 is 12.34%)
	ConventionFraction Convention = "fraction"
)

// Decimals is the precision every normalized value is rounded to
const Decimals = 2

// Cells whose integer part is longer than this cannot be carried as a float64
const maxIntegerDigits = 308

var hundred = decimal.NewFromInt(100)

// ParseConvention validates a convention name
func ParseConvention(s string) (Convention, error) {
	switch c := Convention(strings.ToLower(strings.TrimSpace(s))); c {
	case ConventionPercent, ConventionFraction:
		return c, nil
	case "":
		return ConventionPercent, nil
	default:
		return "", apierrors.NewConfigError(fmt.Sprintf("unknown value convention %q", s), nil)
	}
}

// Normalizer turns raw metric cells into percentage values
type Normalizer struct {
	convention Convention
}

// NewNormalizer returns a normalizer for the given convention. An empty convention means percent.
func NewNormalizer(c Convention) Normalizer {
	if c == "" {
		c = ConventionPercent
	}
	return Normalizer{convention: c}
}

// Convention returns the configured convention
func (n Normalizer) Convention() Convention { return n.convention }

// Normalize converts one cell to a percentage rounded to two decimals.
// Text with a percent sign is taken as-is under both conventions.
func (n Normalizer) Normalize(raw string) (float64, error) {
	d, err := n.Decimal(raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// Decimal is Normalize without the float conversion
func (n Normalizer) Decimal(raw string) (decimal.Decimal, error) {
	s := cleanNumber(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty cell", apierrors.ErrMalformedValue)
	}

	isPercent := strings.Contains(s, "%")
	if isPercent {
		s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	}
	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", apierrors.ErrMalformedValue, raw)
	}

	if !isPercent && n.convention == ConventionFraction {
		d = d.Mul(hundred)
	}

	// magnitude is the position of the leading digit: 1 for 1.5, -2 for 0.005
	magnitude := int64(d.Exponent()) + int64(d.NumDigits())
	if magnitude > maxIntegerDigits {
		return decimal.Zero, fmt.Errorf("%w: %q is out of range", apierrors.ErrMalformedValue, raw)
	}
	if magnitude < -Decimals-1 {
		// rounds to zero; skip rescaling a huge negative exponent
		return decimal.Zero, nil
	}
	d = d.Round(Decimals)

	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, fmt.Errorf("%w: %q is out of range", apierrors.ErrMalformedValue, raw)
	}
	return d, nil
}

// cleanNumber trims the value and drops the spaces used as thousands separators
func cleanNumber(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

// normalizeSeparators accepts a comma as decimal separator when no dot is present,
// and drops commas used as thousands separators otherwise
func normalizeSeparators(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	if strings.Contains(s, ".") {
		return strings.ReplaceAll(s, ",", "")
	}
	if strings.Count(s, ",") == 1 {
		return strings.Replace(s, ",", ".", 1)
	}
	return strings.ReplaceAll(s, ",", "")
}
