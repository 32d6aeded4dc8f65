package normalization

import (
	"strings"
	"testing"
)

type testLevel string

const (
	testLevelDebug testLevel = "debug"
	testLevelInfo  testLevel = "info"
	testLevelWarn  testLevel = "warn"
)

func newTestNormalizer() *Normalizer[testLevel] {
	return NewNormalizer("level", map[string]testLevel{
		"debug": testLevelDebug,
		"info":  testLevelInfo,
		"WARN":  testLevelWarn,
	}, testLevelInfo)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name     string
		input    string
		expected testLevel
	}{
		{"exact match", "debug", testLevelDebug},
		{"case insensitive", "DEBUG", testLevelDebug},
		{"registered key is cleaned too", "warn", testLevelWarn},
		{"with spaces", "  warn  ", testLevelWarn},
		{"invalid input falls back", "verbose", testLevelInfo},
		{"empty falls back", "", testLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizer_WithError(t *testing.T) {
	n := newTestNormalizer()

	if v, err := n.NormalizeWithError(" Info "); err != nil || v != testLevelInfo {
		t.Fatalf("NormalizeWithError(Info) = %v, %v", v, err)
	}

	_, err := n.NormalizeWithError("loud")
	if err == nil {
		t.Fatal("expected error for unknown value")
	}
	if !strings.Contains(err.Error(), "invalid level \"loud\"") || !strings.Contains(err.Error(), "[debug info warn]") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestNormalizer_IsKnownAndKeys(t *testing.T) {
	n := newTestNormalizer()

	if !n.IsKnown("DeBuG") {
		t.Error("expected DeBuG to be known")
	}
	if n.IsKnown("trace") {
		t.Error("expected trace to be unknown")
	}

	keys := n.ValidKeys()
	keys[0] = "mutated"
	if n.ValidKeys()[0] != "debug" {
		t.Error("ValidKeys must return a copy")
	}
}
