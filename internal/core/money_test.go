package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"0", "0", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"+3", "3", true},
		{".5", "0.5", true},
		{"6500", "6500", true},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "1000", true},
		{"1E2", "100", true},
		{"1800.5e0", "1800.5", true},
		{"2.5e-1", "0.25", true},
		{"-0", "0", true},
		{"999999999999.99", "999999999999.99", true},
		{"1000000000000", "", false},
		{"999999999999.995", "", false},
		{"1e13", "", false},
		{"1e999999999", "", false},
		{"-1e3", "", false},
		{"0x10", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("1800")); got != "1800.00" {
		t.Fatalf("expected 1800.00, got %s", got)
	}
}

func TestRepeatedAdditionKeepsCents(t *testing.T) {
	cent := decimal.RequireFromString("0.10")
	sum := decimal.Zero
	for i := 0; i < 1000; i++ {
		sum = sum.Add(cent)
	}
	if !sum.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", sum)
	}
}
