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
	if !ParticipantID("").IsEmpty() {
		t.Error("Expected empty participant ID to be empty")
	}
}

// TestParseParticipantID tests participant ID parsing
func TestParseParticipantID(t *testing.T) {
	tests := []struct {
		input    string
		expected ParticipantID
		hasError bool
	}{
		{"p-123", ParticipantID("p-123"), false},
		{" p-7 ", ParticipantID("p-7"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseParticipantID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseStatementID tests the textual statement IDs written by the vote exporter
func TestParseStatementID(t *testing.T) {
	tests := []struct {
		input    string
		expected StatementID
		hasError bool
	}{
		{"17", 17, false},
		{" 4 ", 4, false},
		{"12.0", 12, false},
		{"12.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, test := range tests {
		result, err := ParseStatementID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %d, got %d", test.expected, result)
		}
	}
}

// TestResultFingerprintStable tests that equal values hash identically regardless of map order
func TestResultFingerprintStable(t *testing.T) {
	a := map[string]int{"x": 1, "y": 2, "z": 3}
	b := map[string]int{"z": 3, "y": 2, "x": 1}

	ha, err := ComputeResultFingerprint(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hb, err := ComputeResultFingerprint(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ha != hb {
		t.Errorf("Expected equal fingerprints, got %s and %s", ha, hb)
	}

	hc, _ := ComputeResultFingerprint(map[string]int{"x": 2})
	if ha == hc {
		t.Error("Expected different fingerprints for different values")
	}
}
