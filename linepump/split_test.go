package linepump

import (
	"bufio"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func scanAll(t *testing.T, s *bufio.Scanner) []string {
	t.Helper()
	var lines []string
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	assert.NoError(t, s.Err())
	return lines
}

// Make sure every kind of line ending is recognized and removed.
func TestNewLineSplitter(t *testing.T) {
	testCases := map[string]struct {
		input    string
		expected []string
	}{
		"empty": {
			input:    "",
			expected: nil,
		},
		"newLine": {
			input:    "hello\nthere\n",
			expected: []string{"hello", "there"},
		},
		"carriageReturnNewLine": {
			input:    "hello\r\nthere\r\n",
			expected: []string{"hello", "there"},
		},
		"loneCarriageReturn": {
			input:    "hello\rthere\r",
			expected: []string{"hello", "there"},
		},
		"mixed": {
			input:    "a\r\nb\nc\rd",
			expected: []string{"a", "b", "c", "d"},
		},
		"emptyLines": {
			input:    "\n\r\n\r",
			expected: []string{"", "", ""},
		},
		"unterminatedTail": {
			input:    "hello\nthere",
			expected: []string{"hello", "there"},
		},
		"doubleCarriageReturn": {
			input:    "a\r\rb\n",
			expected: []string{"a", "", "b"},
		},
	}
	for n, tc := range testCases {
		t.Run(n, func(t *testing.T) {
			s := bufio.NewScanner(strings.NewReader(tc.input))
			s.Split(NewLineSplitter())
			assert.Equal(t, tc.expected, scanAll(t, s))

			// Feeding one byte at a time puts every "\r"
			// at the end of the buffer.
			s = bufio.NewScanner(iotest.OneByteReader(strings.NewReader(tc.input)))
			s.Split(NewLineSplitter())
			assert.Equal(t, tc.expected, scanAll(t, s))
		})
	}
}
