package linepump

import (
	"bufio"
	"bytes"
)

const (
	newLineChar = '\n'
	returnChar  = '\r'
)

// NewLineSplitter returns a bufio.SplitFunc that ends a line at "\n",
// "\r\n" or a lone "\r", stripping the terminator.
//
// A "\r" is reported as soon as it is seen, so a prompt ending in "\r"
// is not held back waiting for a possible "\n".  The splitter remembers
// that it did this and swallows a "\n" arriving next, so "\r\n" split
// across two reads still yields a single line.  Hence the returned
// function is stateful and must serve only one scanner.
//
// At end of input, an unterminated fragment becomes the last line.
func NewLineSplitter() bufio.SplitFunc {
	skipNewLine := false
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if skipNewLine && len(data) > 0 {
			skipNewLine = false
			if data[0] == newLineChar {
				return 1, nil, nil
			}
		}
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
			if data[i] == returnChar {
				if i+1 == len(data) {
					skipNewLine = true
				} else if data[i+1] == newLineChar {
					return i + 2, data[:i], nil
				}
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		// Request more data.
		return 0, nil, nil
	}
}
