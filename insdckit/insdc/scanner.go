package insdc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// State is the section of a record the scanner is in.
type State int

const (
	StateAwaitingRecord State = iota
	StateHeader
	StateFeatures
	StateFooter
)

func (s State) String() string {
	switch s {
	case StateAwaitingRecord:
		return "awaiting record"
	case StateHeader:
		return "header"
	case StateFeatures:
		return "feature table"
	case StateFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// Options configure a Scanner.
type Options struct {
	// Logger receives warnings and debug output. Nil discards them.
	Logger *log.Logger
	// Debug selects the verbosity of debug output: 0 none, 1 sections,
	// 2 individual lines.
	Debug int
	// SkipFeatures consumes the feature table without tokenizing it. No
	// feature table events are emitted.
	SkipFeatures bool
}

// Scanner reads records of one dialect from a stream.
type Scanner struct {
	in      *LineReader
	dialect Dialect
	layout  Layout
	logger  *log.Logger
	debug   int
	skip    bool

	state      State
	held       bool // current line has not been consumed yet
	recordLine int  // line number of the current record start
}

// NewScanner returns a scanner for d reading from r. It fails if the
// dialect's layout is invalid.
func NewScanner(r io.Reader, d Dialect, opts Options) (*Scanner, error) {
	layout := d.Layout()
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout for %s: %w", d.Name(), err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scanner{
		in:      NewLineReader(r),
		dialect: d,
		layout:  layout,
		logger:  logger,
		debug:   opts.Debug,
		skip:    opts.SkipFeatures,
	}, nil
}

// Dialect returns the scanner's dialect.
func (s *Scanner) Dialect() Dialect {
	return s.dialect
}

// State returns the section the scanner is in.
func (s *Scanner) State() State {
	return s.state
}

// Line returns the number of the current input line.
func (s *Scanner) Line() int {
	return s.in.Number()
}

func (s *Scanner) debugf(level int, msg string, keyvals ...any) {
	if s.debug >= level {
		s.logger.Debug(msg, append([]any{"dialect", s.dialect.Name(), "line", s.in.Number()}, keyvals...)...)
	}
}

func (s *Scanner) advance() (bool, error) {
	s.held = false
	return s.in.Next()
}

func (s *Scanner) fail(kind error, text, format string, args ...any) error {
	return s.annotate(syntaxErrorf(kind, text, format, args...), 0)
}

// annotate fills in the position of a syntax error raised by a dialect or
// the feature tokenizer. Other errors pass through.
func (s *Scanner) annotate(err error, line int) error {
	var se *SyntaxError
	if !errors.As(err, &se) {
		return err
	}
	if se.Dialect == "" {
		se.Dialect = s.dialect.Name()
	}
	if se.State == StateAwaitingRecord {
		se.State = s.state
	}
	if se.Line == 0 {
		if line == 0 {
			line = s.in.Number()
		}
		se.Line = line
	}
	return se
}

// FindStart skips blank lines and "//" terminators up to the next record
// start and returns that line. It returns false at end of input. Any other
// line is an error.
func (s *Scanner) FindStart() (string, bool, error) {
	s.state = StateAwaitingRecord
	for {
		if s.held {
			s.held = false
			if s.in.Done() {
				return "", false, nil
			}
		} else {
			ok, err := s.in.Next()
			if err != nil {
				return "", false, err
			}
			if !ok {
				s.debugf(1, "end of input")
				return "", false, nil
			}
		}
		line := s.in.Line()
		if s.layout.isRecordStart(line) {
			s.recordLine = s.in.Number()
			s.debugf(1, "found record start")
			return line, true, nil
		}
		switch rtrim(line) {
		case "//":
			s.debugf(2, "skipping terminator")
		case "":
			s.debugf(2, "skipping blank line")
		default:
			return "", false, s.fail(ErrMalformedRecordStart, line, "expected a line starting with %q", s.layout.RecordStart)
		}
	}
}

// ParseHeader collects the header lines after the record start, right-trimmed,
// and stops at the feature table or the sequence header, which is left as
// the current line.
func (s *Scanner) ParseHeader() ([]string, error) {
	if !s.layout.isRecordStart(s.in.Line()) {
		return nil, s.fail(ErrMalformedRecordStart, s.in.Line(), "header must follow a record start")
	}
	s.state = StateHeader
	var lines []string
	for {
		ok, err := s.advance()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, s.fail(ErrUnexpectedEOF, "", "end of input in header")
		}
		raw := s.in.Line()
		line := rtrim(raw)
		if s.layout.isFeatureStart(line) {
			s.debugf(1, "found feature table")
			return lines, nil
		}
		if s.layout.isSequenceHeader(raw) {
			s.debugf(1, "found sequence header without feature table")
			return lines, nil
		}
		if line == "//" {
			return nil, s.fail(ErrPrematureTerminator, line, "terminator in header")
		}
		lines = append(lines, line)
	}
}

// ParseFeatures reads the feature table at the current line. With skip set
// the entries are consumed but not tokenized and nil is returned. A record
// without a feature table yields no features and no error.
func (s *Scanner) ParseFeatures(skip bool) ([]Feature, error) {
	l := &s.layout
	if !l.isFeatureStart(rtrim(s.in.Line())) {
		s.debugf(1, "no feature table")
		return nil, nil
	}
	s.state = StateFeatures
	for !s.in.Done() && l.isFeatureStart(rtrim(s.in.Line())) {
		if _, err := s.advance(); err != nil {
			return nil, err
		}
	}

	var features []Feature
	for {
		if s.in.Done() {
			return nil, s.fail(ErrUnexpectedEOF, "", "end of input in feature table")
		}
		raw := s.in.Line()
		if l.isSequenceHeader(raw) {
			s.debugf(1, "found sequence header", "features", len(features))
			return features, nil
		}
		line := rtrim(raw)
		if line == "//" {
			return nil, s.fail(ErrPrematureTerminator, line, "terminator in feature table")
		}
		if l.isFeatureEnd(line) {
			s.debugf(1, "found feature table end", "features", len(features))
			if _, err := s.advance(); err != nil {
				return nil, err
			}
			return features, nil
		}

		key := strings.TrimSpace(cut(line, 2, l.QualifierIndent))
		if key == "" {
			return nil, s.fail(ErrMalformedFeature, line, "expected a feature key")
		}
		start := s.in.Number()
		s.debugf(2, "feature", "key", key)
		lines := []string{from(line, l.QualifierIndent)}
		for {
			ok, err := s.advance()
			if err != nil {
				return nil, err
			}
			if !ok || !l.isContinuation(s.in.Line()) {
				break
			}
			if !skip {
				lines = append(lines, from(rtrim(s.in.Line()), l.QualifierIndent))
			}
		}
		if skip {
			continue
		}
		f, err := ParseFeature(key, lines)
		if err != nil {
			return nil, s.annotate(err, start)
		}
		features = append(features, f)
	}
}

// ParseFooter reads the footer at the current line and leaves the "//"
// terminator as current line. Stray feature table end markers are skipped.
func (s *Scanner) ParseFooter() (Footer, error) {
	s.state = StateFooter
	for !s.in.Done() && s.layout.isFeatureEnd(rtrim(s.in.Line())) {
		if _, err := s.advance(); err != nil {
			return Footer{}, err
		}
	}
	if s.in.Done() {
		return Footer{}, s.fail(ErrUnexpectedEOF, "", "end of input before sequence")
	}
	if !s.layout.isSequenceHeader(s.in.Line()) {
		return Footer{}, s.fail(ErrMalformedFooter, s.in.Line(), "expected a sequence header")
	}
	f, err := s.dialect.ParseFooter(s.in)
	if err != nil {
		return Footer{}, s.annotate(err, 0)
	}
	if rtrim(s.in.Line()) != "//" {
		return Footer{}, s.fail(ErrMalformedFooter, s.in.Line(), "footer must end with //")
	}
	s.debugf(1, "found record end", "residues", len(f.Sequence))
	return f, nil
}

// Next scans one record and pushes its events to h. It returns false at end
// of input. Errors returned by h abort the record and are returned as-is.
func (s *Scanner) Next(h Handler) (bool, error) {
	first, ok, err := s.FindStart()
	if err != nil || !ok {
		return false, err
	}
	em := &Emitter{h: h, dialect: s.dialect.Name(), logger: s.logger, debug: s.debug}

	if err := em.emit(Event{Kind: EventStartRecord}); err != nil {
		return false, err
	}
	if err := s.dialect.FeedFirstLine(first, em); err != nil {
		return false, s.annotate(err, s.recordLine)
	}

	header, err := s.ParseHeader()
	if err != nil {
		return false, err
	}
	if err := s.dialect.FeedHeaderLines(header, em); err != nil {
		return false, s.annotate(err, 0)
	}

	if s.skip {
		if _, err := s.ParseFeatures(true); err != nil {
			return false, err
		}
	} else {
		features, err := s.ParseFeatures(false)
		if err != nil {
			return false, err
		}
		if err := em.emit(Event{Kind: EventStartFeatureTable}); err != nil {
			return false, err
		}
		for _, f := range features {
			if err := em.emit(Event{Kind: EventFeature, Feature: f}); err != nil {
				return false, err
			}
		}
		if err := em.emit(Event{Kind: EventEndFeatureTable}); err != nil {
			return false, err
		}
	}

	footer, err := s.ParseFooter()
	if err != nil {
		return false, err
	}
	if err := s.dialect.FeedFooter(footer, em); err != nil {
		return false, s.annotate(err, 0)
	}
	if err := em.emit(Event{Kind: EventSequence, Sequence: footer.Sequence}); err != nil {
		return false, err
	}
	if err := em.emit(Event{Kind: EventEndRecord}); err != nil {
		return false, err
	}

	s.state = StateAwaitingRecord
	s.held = true
	return true, nil
}

// Resync discards input up to the next record start so that scanning can
// continue after a syntax error. It returns false when no further record
// start exists.
func (s *Scanner) Resync() (bool, error) {
	s.state = StateAwaitingRecord
	if !s.in.Done() && s.in.Number() != s.recordLine && s.layout.isRecordStart(s.in.Line()) {
		s.held = true
		return true, nil
	}
	for {
		ok, err := s.in.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			s.held = true
			return false, nil
		}
		if s.layout.isRecordStart(s.in.Line()) {
			s.debugf(1, "resynchronized")
			s.held = true
			return true, nil
		}
	}
}
