package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseID(t *testing.T) {
	valid := NewID()
	tests := []struct {
		input    string
		hasError bool
	}{
		{valid.String(), false},
		{"  " + valid.String() + " ", false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseID(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseID(%q) unexpected error: %v", tt.input, err)
		}
		if got != valid {
			t.Errorf("ParseID(%q) = %q, want %q", tt.input, got, valid)
		}
	}
}

func TestHashIsDeterministic(t *testing.T) {
	a := NewHash([]byte("a,b\n1,2\n"))
	b := NewHash([]byte("a,b\n1,2\n"))
	c := NewHash([]byte("a,b\n1,3\n"))

	if a != b {
		t.Errorf("expected equal hashes, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different content to hash differently")
	}
	if len(a.Short()) != 12 {
		t.Errorf("expected 12 character short hash, got %q", a.Short())
	}
}
