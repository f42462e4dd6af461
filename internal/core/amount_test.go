package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"150", 15000, false},
		{" 7.5 ", 750, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-3", 0, true},
		{"+3", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseDecimalToCents(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseDecimalToCents(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Fatalf("ParseDecimalToCents(%q) = %d, %v; want %d", c.in, got, err, c.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	if s := FormatCents(1234); s != "12.34" {
		t.Fatalf("FormatCents(1234) = %q", s)
	}
	if s := FormatCents(5); s != "0.05" {
		t.Fatalf("FormatCents(5) = %q", s)
	}
	if s := FormatCents(-150); s != "-1.50" {
		t.Fatalf("FormatCents(-150) = %q", s)
	}
}

func TestEntryValidate(t *testing.T) {
	e := Entry{Category: "food", Name: "coffee", Amount: Money{Cents: 300}}
	if err := e.Validate(); err == nil {
		t.Fatalf("expected zero timestamp to be rejected")
	}
	e.Timestamp = mustTime(t, "2026-08-01T10:00:00Z")
	if err := e.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
	e.Category = "  "
	if err := e.Validate(); err != ErrEmptyCategory {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}
