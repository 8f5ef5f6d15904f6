package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plaintext marker and moves",
			input:    "plaintext\n1. e4 e5\n[FEN \"x\"]",
			expected: "[FEN \"x\"]",
		},
		{
			name:     "marker is case insensitive",
			input:    "PlainText   hello",
			expected: "hello",
		},
		{
			name:     "repeated marker",
			input:    "plaintext plaintext board",
			expected: "board",
		},
		{
			name:     "marker must be a whole word",
			input:    "plaintextual",
			expected: "plaintextual",
		},
		{
			name:     "moves without spaces after the number",
			input:    "1.e4 e5 2.Nf3 Nc6 position follows",
			expected: "position follows",
		},
		{
			name:     "castling and captures",
			input:    "1. O-O O-O-O 2. Bxf7+ Kxf7",
			expected: "",
		},
		{
			name:     "removal that exposes a new pair",
			input:    "1. e4 2. d4 d5 e5",
			expected: "",
		},
		{
			name:     "prose is untouched",
			input:    "White to move and win.",
			expected: "White to move and win.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"plaintext\n1. e4 e5\n[FEN \"x\"]",
		"1. e4 2. d4 d5 e5 then 3. c4",
		"  plaintext  plaintext 1.d4 d5 2.c4 e6 3.Nc3",
		"[Event \"?\"]\n\n1. e4 e5 2. Nf3 *",
		"nothing to clean",
	}

	for _, input := range inputs {
		once := Clean(input)
		assert.Equal(t, once, Clean(once), input)
	}
}
