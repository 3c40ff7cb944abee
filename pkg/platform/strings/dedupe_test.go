package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordType string

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil slice", nil, nil},
		{"empty slice", []string{}, []string{}},
		{"trims whitespace", []string{"  fatigue  ", "pain  "}, []string{"fatigue", "pain"}},
		{"removes duplicates preserving order", []string{"pain", "fatigue", "pain"}, []string{"pain", "fatigue"}},
		{"removes blanks", []string{"pain", "", "  "}, []string{"pain"}},
		{"keeps case", []string{"Pain", "pain"}, []string{"Pain", "pain"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	assert.Equal(t, []string{"pain", "fatigue"}, DedupeAndTrimLower([]string{" Pain", "PAIN", "fatigue "}))
}

func TestDedupeOnNamedTypes(t *testing.T) {
	got := DedupeAndTrim([]recordType{"daily_log", " daily_log", "activity_log"})
	assert.Equal(t, []recordType{"daily_log", "activity_log"}, got)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "brain fog", NormalizeName("  Brain Fog "))
}
