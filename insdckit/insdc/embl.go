package insdc

import (
	"strings"
)

const (
	emblRecordStart = "ID   "
	emblHeaderWidth = 5
)

var emblSequenceIndent = strings.Repeat(" ", emblHeaderWidth)

// EMBL is the EMBL-Bank flat file dialect.
var EMBL Dialect = embl{}

type embl struct{}

func (embl) Name() string { return "embl" }

func (embl) Layout() Layout {
	return Layout{
		RecordStart:     emblRecordStart,
		HeaderWidth:     emblHeaderWidth,
		FeatureStart:    []string{"FH   Key             Location/Qualifiers", "FH"},
		FeatureEnd:      "XX",
		QualifierIndent: 21,
		QualifierSpacer: "FT" + strings.Repeat(" ", 19),
		SequenceHeaders: []string{"SQ", "CO"},
	}
}

// FeedFirstLine interprets the ID line, either the current seven-field form
//
//	ID   X56734; SV 1; linear; mRNA; STD; PLN; 1859 BP.
//
// or the four-field form used before 2006
//
//	ID   AA03518    standard; DNA; FUN; 237 BP.
func (embl) FeedFirstLine(line string, em *Emitter) error {
	if !strings.HasPrefix(line, emblRecordStart) {
		return syntaxErrorf(ErrMalformedRecordStart, line, "expected ID line")
	}
	parts := strings.Split(strings.TrimSpace(from(line, emblHeaderWidth)), ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var fields []Field
	var size string
	switch len(parts) {
	case 7:
		locus := parts[0]
		version := locus
		if sv, ok := strings.CutPrefix(parts[1], "SV "); ok && sv != "" {
			version = locus + "." + strings.TrimSpace(sv)
		}
		fields = []Field{
			{FieldLocus, locus},
			{FieldVersion, version},
			{FieldTopology, parts[2]},
			{FieldResidueType, parts[3]},
			{FieldDataClass, parts[4]},
			{FieldDivision, parts[5]},
		}
		size = parts[6]
	case 4:
		name := strings.Fields(parts[0])
		if len(name) == 0 {
			return syntaxErrorf(ErrMalformedHeader, line, "missing entry name")
		}
		fields = []Field{{FieldLocus, name[0]}}
		if len(name) > 1 {
			fields = append(fields, Field{FieldDataClass, name[1]})
		}
		fields = append(fields,
			Field{FieldResidueType, parts[1]},
			Field{FieldDivision, parts[2]},
		)
		size = parts[3]
	default:
		return syntaxErrorf(ErrMalformedHeader, line, "ID line has %d fields, want 7 or 4", len(parts))
	}

	n, unit, ok := strings.Cut(size, " ")
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "BP", "BP.", "AA", "AA.":
	default:
		ok = false
	}
	if !ok || n == "" {
		return syntaxErrorf(ErrMissingLength, line, "cannot read sequence length from %q", size)
	}
	fields = append(fields, Field{FieldSize, n})
	return emitHeaderFields(em, fields)
}

// Line codes passed through as-is. Repeated lines are emitted one by one
// and joined by the consumer.
var emblTextFields = map[string]FieldName{
	"AC": FieldAccession,
	"DE": FieldDefinition,
	"KW": FieldKeywords,
	"OS": FieldOrganism,
	"OC": FieldTaxonomy,
	"RA": FieldAuthors,
	"RG": FieldConsortium,
	"RT": FieldTitle,
	"RL": FieldJournal,
	"CC": FieldComment,
	"DR": FieldDBXref,
}

func (embl) FeedHeaderLines(lines []string, em *Emitter) error {
	for _, line := range lines {
		if line == "" {
			continue
		}
		code := strings.TrimSpace(cut(line, 0, emblHeaderWidth))
		data := strings.TrimSpace(from(line, emblHeaderWidth))
		if err := feedEMBLHeader(code, data, line, em); err != nil {
			return err
		}
	}
	return nil
}

func feedEMBLHeader(code, data, line string, em *Emitter) error {
	if name, ok := emblTextFields[code]; ok {
		return em.Header(name, data)
	}
	switch code {
	case "XX", "SV", "OG", "AH", "AS", "PR":
		return nil
	case "DT":
		date, _, _ := strings.Cut(data, " ")
		return em.Header(FieldDate, date)
	case "RN":
		return em.Header(FieldReferenceNum, strings.Trim(data, "[]"))
	case "RC":
		return em.Header(FieldRemark, data)
	case "RP":
		bases, err := emblReferenceBases(data)
		if err != nil {
			err.Text = line
			return err
		}
		return em.Header(FieldReferenceBases, bases)
	case "RX":
		db, id, ok := strings.Cut(data, ";")
		if !ok {
			return em.Header(FieldReferenceXref, data)
		}
		id = strings.TrimSuffix(strings.TrimSpace(id), ".")
		switch strings.TrimSpace(db) {
		case "PUBMED":
			return em.Header(FieldPubMedID, id)
		case "MEDLINE":
			return em.Header(FieldMedlineID, id)
		default:
			return em.Header(FieldReferenceXref, strings.TrimSpace(db)+":"+id)
		}
	}
	em.Debug(2, "ignoring header line", "code", code)
	return nil
}

// emblReferenceBases turns "1-1859" into "(bases 1 to 1859)". Several ranges
// separated by commas are joined with "; ".
func emblReferenceBases(data string) (string, *SyntaxError) {
	var ranges []string
	for _, part := range strings.Split(data, ",") {
		part = strings.TrimSpace(part)
		if strings.Count(part, "-") != 1 {
			return "", syntaxErrorf(ErrMalformedHeader, "", "reference position %q is not a single range", part)
		}
		start, end, _ := strings.Cut(part, "-")
		ranges = append(ranges, strings.TrimSpace(start)+" to "+strings.TrimSpace(end))
	}
	return "(bases " + strings.Join(ranges, "; ") + ")", nil
}

// ParseFooter collects SQ and CO lines as misc lines, skipping XX spacers,
// then reads sequence lines: residues in blocks followed by a running count.
func (embl) ParseFooter(in *LineReader) (Footer, error) {
	var (
		f   Footer
		seq strings.Builder
	)
	next := func(where string) error {
		ok, err := in.Next()
		if err != nil {
			return err
		}
		if !ok {
			return syntaxErrorf(ErrUnexpectedEOF, "", "end of input in %s", where)
		}
		return nil
	}

	for {
		line := rtrim(in.Line())
		code := strings.TrimSpace(cut(line, 0, emblHeaderWidth))
		if line == "//" {
			return f, nil
		}
		if code == "SQ" || code == "CO" {
			f.Misc = append(f.Misc, line)
		} else if code != "XX" {
			break
		}
		if err := next("footer"); err != nil {
			return Footer{}, err
		}
	}

	for {
		raw := in.Line()
		line := strings.TrimSpace(raw)
		switch {
		case line == "//":
			f.Sequence = seq.String()
			return f, nil
		case line == "":
			return Footer{}, syntaxErrorf(ErrMalformedSequence, raw, "blank line in sequence data")
		case !strings.HasPrefix(raw, emblSequenceIndent):
			return Footer{}, syntaxErrorf(ErrMalformedSequence, raw, "sequence line must be indented %d columns", emblHeaderWidth)
		}
		blocks := strings.Fields(line)
		if last := blocks[len(blocks)-1]; isDigits(last) {
			blocks = blocks[:len(blocks)-1]
		}
		for _, b := range blocks {
			seq.WriteString(b)
		}
		if err := next("sequence"); err != nil {
			return Footer{}, err
		}
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func (embl) FeedFooter(f Footer, em *Emitter) error {
	var contig []string
	for _, line := range f.Misc {
		code := strings.TrimSpace(cut(line, 0, emblHeaderWidth))
		data := strings.TrimSpace(from(line, emblHeaderWidth))
		switch code {
		case "SQ":
			if err := em.Footer(FieldBaseCount, data); err != nil {
				return err
			}
		case "CO":
			contig = append(contig, data)
		}
	}
	if len(contig) > 0 {
		return em.Footer(FieldContigLocation, strings.Join(contig, ""))
	}
	return nil
}
