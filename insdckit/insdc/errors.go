package insdc

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. A *SyntaxError unwraps to one of these, so callers can test
// with errors.Is.
var (
	ErrUnexpectedEOF        = errors.New("unexpected end of input")
	ErrMalformedRecordStart = errors.New("malformed record start")
	ErrMalformedLocusLine   = errors.New("malformed LOCUS line")
	ErrMissingLength        = errors.New("missing sequence length")
	ErrOrphanedContinuation = errors.New("continuation line without a qualifier")
	ErrUnterminatedQuote    = errors.New("unterminated quoted qualifier")
	ErrPrematureTerminator  = errors.New("premature record terminator")
	ErrMalformedFeature     = errors.New("malformed feature")
	ErrMalformedHeader      = errors.New("malformed header")
	ErrMalformedFooter      = errors.New("malformed footer")
	ErrMalformedSequence    = errors.New("malformed sequence data")
)

// SyntaxError reports malformed input. It is fatal to the record being
// scanned; the scanner can be moved to the next record with Resync.
type SyntaxError struct {
	Kind    error
	Dialect string
	State   State
	Line    int    // 1-based input line, 0 when unknown
	Text    string // offending line
	Detail  string
	Feature string   // feature key, inside the feature table
	Lines   []string // raw lines accumulated for Feature
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.Dialect != "" {
		b.WriteString(e.Dialect)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.State != StateAwaitingRecord {
		fmt.Fprintf(&b, " (%s)", e.State)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Feature != "" {
		fmt.Fprintf(&b, " in %q feature", e.Feature)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, ": %q", e.Text)
	}
	if len(e.Lines) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(e.Lines, "\n"))
	}
	return b.String()
}

func (e *SyntaxError) Unwrap() error {
	return e.Kind
}

func syntaxErrorf(kind error, text, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Kind:   kind,
		Text:   text,
		Detail: fmt.Sprintf(format, args...),
	}
}
