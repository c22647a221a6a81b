package id

import (
	"strings"
	"testing"
)

func TestNewFormat(t *testing.T) {
	got, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(got) != 26 {
		t.Fatalf("len(New()) = %d, want 26", len(got))
	}
	if got != strings.ToLower(got) {
		t.Fatalf("New() = %q, want lowercase", got)
	}
	if strings.ContainsAny(got, "=") {
		t.Fatalf("New() = %q, want no padding", got)
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		got, err := New()
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if seen[got] {
			t.Fatalf("New() returned duplicate %q", got)
		}
		seen[got] = true
	}
}
