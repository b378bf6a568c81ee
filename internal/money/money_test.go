package money

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		dp       int
		expected string
	}{
		{name: "two places", value: "10", dp: 2, expected: "10.00"},
		{name: "rounds half up", value: "1.005", dp: 2, expected: "1.01"},
		{name: "rounds half up negative", value: "-1.005", dp: 2, expected: "-1.01"},
		{name: "truncates extra digits", value: "3.14159", dp: 3, expected: "3.142"},
		{name: "zero precision", value: "2.6", dp: 0, expected: "3"},
		{name: "negative precision treated as zero", value: "2.4", dp: -1, expected: "2"},
		{name: "large value no scientific notation", value: "12345678901234.5", dp: 2, expected: "12345678901234.50"},
		{name: "tiny value no scientific notation", value: "0.00000001", dp: 8, expected: "0.00000001"},
		{name: "zero", value: "0", dp: 2, expected: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.value)
			got := FormatDecimal(d, tt.dp)
			if got != tt.expected {
				t.Errorf("FormatDecimal(%s, %d) = %q, want %q", tt.value, tt.dp, got, tt.expected)
			}
			if strings.ContainsAny(got, "eE") {
				t.Errorf("FormatDecimal(%s, %d) = %q contains scientific notation", tt.value, tt.dp, got)
			}
		})
	}
}

// Formatting a formatted value must yield the same string, and the fractional
// digit count must match the precision exactly.
func TestFormatDecimal_Idempotent(t *testing.T) {
	values := []string{"0", "1.005", "99.999", "-42.424242", "1234567.891"}
	for _, v := range values {
		for dp := 0; dp <= 4; dp++ {
			first := FormatDecimal(decimal.RequireFromString(v), dp)
			second := FormatDecimal(decimal.RequireFromString(first), dp)
			if first != second {
				t.Errorf("FormatDecimal not idempotent for %s at dp=%d: %q != %q", v, dp, first, second)
			}

			frac := ""
			if i := strings.IndexByte(first, '.'); i >= 0 {
				frac = first[i+1:]
			}
			if len(frac) != dp {
				t.Errorf("FormatDecimal(%s, %d) = %q: %d fractional digits", v, dp, first, len(frac))
			}
		}
	}
}

func TestCoerceDecimal(t *testing.T) {
	if got := CoerceDecimal("12.50"); !got.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("CoerceDecimal(12.50) = %s", got)
	}
	for _, bad := range []string{"", "abc", "12.3.4", "--5"} {
		if got := CoerceDecimal(bad); !got.IsZero() {
			t.Errorf("CoerceDecimal(%q) = %s, want 0", bad, got)
		}
	}
}

func TestFormatString(t *testing.T) {
	if got := FormatString("not-a-number", 2); got != "0.00" {
		t.Errorf("FormatString(not-a-number, 2) = %q, want 0.00", got)
	}
	if got := FormatString("7.1", 2); got != "7.10" {
		t.Errorf("FormatString(7.1, 2) = %q, want 7.10", got)
	}
}

func TestFormatDateTime(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)

	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	local, utc := FormatDateTime(&ts, loc)
	if local == nil || utc == nil {
		t.Fatal("expected non-nil pair for set timestamp")
	}
	if *utc != "2025-06-15T10:30:00" {
		t.Errorf("utc = %q", *utc)
	}
	if *local != "2025-06-15T02:30:00" {
		t.Errorf("local = %q", *local)
	}
}

func TestFormatDateTime_Unset(t *testing.T) {
	local, utc := FormatDateTime(nil, time.UTC)
	if local != nil || utc != nil {
		t.Errorf("expected nil pair for unset timestamp, got %v/%v", local, utc)
	}
}
