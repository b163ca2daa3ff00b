package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long string truncated",
			input:    "hello world this is a long string",
			maxLen:   15,
			expected: "hello world ...",
		},
		{
			name:     "build error collapsed onto one line",
			input:    "dotnet build App.csproj failed with exit code 1:\n  error CS1002: ; expected\r\n",
			maxLen:   80,
			expected: "dotnet build App.csproj failed with exit code 1: error CS1002: ; expected",
		},
		{
			name:     "unicode truncation safe",
			input:    "日本語テスト文字列",
			maxLen:   6,
			expected: "日本語...",
		},
		{
			name:     "whitespace only becomes empty",
			input:    "   \n\t  ",
			maxLen:   10,
			expected: "",
		},
		{
			name:     "maxLen below minimum clamped",
			input:    "hello",
			maxLen:   -5,
			expected: "h...",
		},
		{
			name:     "short string with small maxLen unchanged",
			input:    "hi",
			maxLen:   3,
			expected: "hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Summarize(tt.input, tt.maxLen))
		})
	}
}

func TestTail(t *testing.T) {
	output := "Restore complete\n\n  Determining projects\r\nwarning NU1603\nerror CS1002\nBuild FAILED.\n"

	tests := []struct {
		name     string
		n        int
		expected string
	}{
		{
			name:     "all lines kept",
			n:        10,
			expected: "Restore complete\n  Determining projects\nwarning NU1603\nerror CS1002\nBuild FAILED.",
		},
		{
			name:     "earlier lines dropped",
			n:        2,
			expected: "... (3 earlier lines omitted)\nerror CS1002\nBuild FAILED.",
		},
		{
			name:     "non-positive keeps everything",
			n:        0,
			expected: "Restore complete\n  Determining projects\nwarning NU1603\nerror CS1002\nBuild FAILED.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tail(output, tt.n))
		})
	}

	assert.Empty(t, Tail("", 3))
}
