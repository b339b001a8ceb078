package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "uppercases", in: "nairobi", expected: "NAIROBI"},
		{name: "strips punctuation", in: "O'BRIEN-SMITH", expected: "O BRIEN SMITH"},
		{name: "transliterates accents", in: "José Gutiérrez", expected: "JOSE GUTIERREZ"},
		{name: "collapses whitespace", in: "ADDIS   ABABA ", expected: "ADDIS ABABA"},
		{name: "keeps digits", in: "P7264278", expected: "P7264278"},
		{name: "sentinel nan", in: "NaN", expected: ""},
		{name: "sentinel none", in: "None", expected: ""},
		{name: "sentinel na", in: "n/a", expected: ""},
		{name: "empty", in: "", expected: ""},
		{name: "only punctuation", in: "--//--", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanString(tt.in))
		})
	}
}

func TestCleanString_NonASCII(t *testing.T) {
	// Characters without an ASCII decomposition are dropped rather than
	// kept as noise.
	assert.Equal(t, "ANKARA", CleanString("ANKARA™"))
	assert.Equal(t, "MUNCHEN", CleanString("München"))
}
