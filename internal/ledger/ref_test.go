package ledger

import "testing"

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("https://docs.google.com/spreadsheets/d/1aB_c-9xYz/edit#gid=0")
	if err != nil || ref != "1aB_c-9xYz" {
		t.Fatalf("got ref=%q err=%v", ref, err)
	}

	// Bare id segment inside any surrounding text works too
	ref, err = ParseRef("here it is /spreadsheets/d/abc123 thanks")
	if err != nil || ref != "abc123" {
		t.Fatalf("got ref=%q err=%v", ref, err)
	}

	for _, in := range []string{"", "hello", "https://example.com/doc/d/xyz"} {
		if _, err := ParseRef(in); err != ErrInvalidRef {
			t.Fatalf("ParseRef(%q): expected ErrInvalidRef, got %v", in, err)
		}
	}
}
