package insdc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const defaultBufferSize = 1 << 20 // 1 MiB

// LineReader is a one-line lookahead over a text stream. Line terminators
// (\n or \r\n) are removed; end of input is reported separately from blank
// lines.
type LineReader struct {
	r       *bufio.Reader
	line    string
	n       int
	drained bool
	done    bool
}

// NewLineReader wraps r. A *bufio.Reader is used as-is so that bytes peeked
// while sniffing the dialect are not lost.
func NewLineReader(r io.Reader) *LineReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &LineReader{r: br}
	}
	return &LineReader{r: bufio.NewReaderSize(r, defaultBufferSize)}
}

// Next reads the following line into the lookahead buffer. It returns false
// once the input is exhausted; the error is non-nil only for read failures.
func (lr *LineReader) Next() (bool, error) {
	if lr.drained {
		lr.line = ""
		lr.done = true
		return false, nil
	}
	s, err := lr.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("read line %d: %w", lr.n+1, err)
		}
		lr.drained = true
		if s == "" {
			lr.line = ""
			lr.done = true
			return false, nil
		}
	}
	lr.n++
	s = strings.TrimSuffix(s, "\n")
	lr.line = strings.TrimSuffix(s, "\r")
	return true, nil
}

// Line returns the current lookahead line ("" after end of input).
func (lr *LineReader) Line() string {
	return lr.line
}

// Number returns the 1-based number of the current line.
func (lr *LineReader) Number() int {
	return lr.n
}

// Done reports whether Next has hit end of input.
func (lr *LineReader) Done() bool {
	return lr.done
}

func rtrim(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}

// cut returns s[i:j] clamped to the bounds of s, like a slice expression on a
// string that may be shorter than the fixed columns being read.
func cut(s string, i, j int) string {
	if i >= len(s) || i >= j {
		return ""
	}
	if j > len(s) {
		j = len(s)
	}
	return s[i:j]
}

func from(s string, i int) string {
	if i >= len(s) {
		return ""
	}
	return s[i:]
}
