package insdc

import (
	"errors"
	"fmt"
	"strings"
)

// Layout holds the fixed-column constants of a dialect.
type Layout struct {
	RecordStart     string   // prefix of the first line of a record
	HeaderWidth     int      // width of the line-code column in the header
	FeatureStart    []string // lines that open the feature table
	FeatureEnd      string   // line that closes the feature table, "" if none
	QualifierIndent int      // column where locations and qualifiers start
	QualifierSpacer string   // prefix of a feature continuation line
	SequenceHeaders []string // line codes that open the footer
}

// Validate checks the layout's internal consistency.
func (l Layout) Validate() error {
	var errs []error
	if len(l.RecordStart) != l.HeaderWidth {
		errs = append(errs, fmt.Errorf("record start %q is not %d columns wide", l.RecordStart, l.HeaderWidth))
	}
	if len(l.QualifierSpacer) != l.QualifierIndent {
		errs = append(errs, fmt.Errorf("qualifier spacer %q is not %d columns wide", l.QualifierSpacer, l.QualifierIndent))
	}
	if len(l.FeatureStart) == 0 {
		errs = append(errs, errors.New("no feature start markers"))
	}
	if len(l.SequenceHeaders) == 0 {
		errs = append(errs, errors.New("no sequence headers"))
	}
	return errors.Join(errs...)
}

func (l *Layout) isRecordStart(line string) bool {
	return strings.HasPrefix(line, l.RecordStart)
}

// isFeatureStart expects a right-trimmed line.
func (l *Layout) isFeatureStart(line string) bool {
	for _, m := range l.FeatureStart {
		if line == m {
			return true
		}
	}
	return false
}

// isFeatureEnd expects a right-trimmed line.
func (l *Layout) isFeatureEnd(line string) bool {
	return l.FeatureEnd != "" && line == l.FeatureEnd
}

func (l *Layout) isSequenceHeader(line string) bool {
	code := rtrim(cut(line, 0, l.HeaderWidth))
	if code == "" {
		return false
	}
	for _, h := range l.SequenceHeaders {
		if code == h {
			return true
		}
	}
	return false
}

// isContinuation reports whether line continues the current feature.
func (l *Layout) isContinuation(line string) bool {
	return strings.HasPrefix(line, l.QualifierSpacer) || strings.TrimSpace(line) == ""
}

// Dialect supplies the format-specific parts of scanning: the column layout
// and the interpretation of header and footer lines.
type Dialect interface {
	Name() string
	Layout() Layout
	// FeedFirstLine interprets the record start line.
	FeedFirstLine(line string, em *Emitter) error
	// FeedHeaderLines interprets the header lines between the record start
	// and the feature table.
	FeedHeaderLines(lines []string, em *Emitter) error
	// ParseFooter reads the footer starting at the current line, which is a
	// sequence header, and stops with the terminator "//" as current line.
	ParseFooter(in *LineReader) (Footer, error)
	// FeedFooter interprets the footer's non-sequence lines.
	FeedFooter(f Footer, em *Emitter) error
}

// Footer is the tail of a record.
type Footer struct {
	Misc     []string // sequence headers and similar lines, right-trimmed
	Sequence string   // residues with spacing and numbering removed
}

// DialectByName resolves a dialect from its name or a common file suffix.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "genbank", "gb", "gbk", "gbff":
		return GenBank, nil
	case "embl", "em", "dat":
		return EMBL, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}
