package insdc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const sniffSize = 64 << 10

// ErrUnknownDialect is returned by Sniff when the input starts with neither
// a LOCUS nor an ID line.
var ErrUnknownDialect = errors.New("cannot detect flat file dialect")

// Sniff peeks at the first non-blank line of br to pick the dialect. Nothing
// is consumed, so br can be handed to NewScanner afterwards. Empty input
// yields GenBank.
func Sniff(br *bufio.Reader) (Dialect, error) {
	buf, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("sniff dialect: %w", err)
	}
	for len(buf) > 0 {
		line := buf
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			line, buf = buf[:i], buf[i+1:]
		} else {
			buf = nil
		}
		line = bytes.TrimRight(line, " \t\r")
		switch {
		case len(line) == 0, string(line) == "//":
			continue
		case bytes.HasPrefix(line, []byte("LOCUS ")), string(line) == "LOCUS":
			return GenBank, nil
		case bytes.HasPrefix(line, []byte(emblRecordStart)):
			return EMBL, nil
		default:
			return nil, fmt.Errorf("%w: first line %q", ErrUnknownDialect, truncate(string(line), 80))
		}
	}
	return GenBank, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
