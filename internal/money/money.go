// Package money renders monetary amounts and timestamps for API responses.
//
// Amounts are formatted with a configurable number of fractional digits using
// half-up rounding and never scientific notation. Timestamps are rendered as
// site-local/UTC ISO-8601 pairs, with unset timestamps treated as "never".
package money

import (
	"time"

	"github.com/shopspring/decimal"
)

// ISO8601 is the wire format for date-time fields.
const ISO8601 = "2006-01-02T15:04:05"

// FormatDecimal renders d with exactly dp fractional digits, rounding half
// away from zero. Negative precision is treated as zero.
func FormatDecimal(d decimal.Decimal, dp int) string {
	if dp < 0 {
		dp = 0
	}
	return d.StringFixed(int32(dp))
}

// CoerceDecimal parses a decimal string, coercing non-numeric input to zero.
func CoerceDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatString parses and re-renders a decimal string at the given precision.
// Non-numeric input renders as zero.
func FormatString(s string, dp int) string {
	return FormatDecimal(CoerceDecimal(s), dp)
}

// FormatDateTime renders a timestamp as a (local, utc) ISO-8601 pair. A nil
// timestamp yields a nil pair.
func FormatDateTime(t *time.Time, loc *time.Location) (local, utc *string) {
	if t == nil {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc).Format(ISO8601)
	u := t.UTC().Format(ISO8601)
	return &l, &u
}
