package utils

import (
	"strings"
	"testing"
)

func TestNanoID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NanoID()
		if len(id) != idLength {
			t.Fatalf("len(%q) = %d", id, len(id))
		}
		if strings.Trim(id, alphabet) != "" {
			t.Fatalf("unexpected characters in %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if len(NanoString(8)) != 8 {
		t.Error("NanoString length")
	}
}
