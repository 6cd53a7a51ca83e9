package insdc

import (
	"strings"
)

const (
	genBankRecordStart = "LOCUS       "
	genBankHeaderWidth = 12
)

var genBankSpacer = strings.Repeat(" ", genBankHeaderWidth)

// GenBank is the NCBI GenBank flat file dialect.
var GenBank Dialect = genBank{}

type genBank struct{}

func (genBank) Name() string { return "genbank" }

func (genBank) Layout() Layout {
	return Layout{
		RecordStart:     genBankRecordStart,
		HeaderWidth:     genBankHeaderWidth,
		FeatureStart:    []string{"FEATURES             Location/Qualifiers", "FEATURES"},
		QualifierIndent: 21,
		QualifierSpacer: strings.Repeat(" ", 21),
		SequenceHeaders: []string{"CONTIG", "ORIGIN", "BASE COUNT"},
	}
}

func (genBank) FeedFirstLine(line string, em *Emitter) error {
	if !strings.HasPrefix(line, genBankRecordStart) {
		return syntaxErrorf(ErrMalformedRecordStart, line, "expected LOCUS line")
	}
	return feedLocusLine(line, em)
}

// Header line codes whose text is passed through with continuation lines
// joined by a single space.
var genBankTextFields = map[string]FieldName{
	"DEFINITION": FieldDefinition,
	"ACCESSION":  FieldAccession,
	"NID":        FieldNID,
	"PID":        FieldPID,
	"DBSOURCE":   FieldDBSource,
	"KEYWORDS":   FieldKeywords,
	"SEGMENT":    FieldSegment,
	"SOURCE":     FieldSource,
	"AUTHORS":    FieldAuthors,
	"CONSRTM":    FieldConsortium,
	"TITLE":      FieldTitle,
	"JOURNAL":    FieldJournal,
	"MEDLINE":    FieldMedlineID,
	"PUBMED":     FieldPubMedID,
	"REMARK":     FieldRemark,
	"PROJECT":    FieldDBXref,
	"DBLINK":     FieldDBXref,
}

func (genBank) FeedHeaderLines(lines []string, em *Emitter) error {
	var kept []string
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	for i := 0; i < len(kept); {
		line := kept[i]
		code := strings.TrimSpace(cut(line, 0, genBankHeaderWidth))
		data := strings.TrimSpace(from(line, genBankHeaderWidth))
		i++
		var cont []string
		for i < len(kept) && strings.HasPrefix(kept[i], genBankSpacer) {
			cont = append(cont, kept[i][genBankHeaderWidth:])
			i++
		}
		if err := feedGenBankHeader(code, data, cont, em); err != nil {
			return err
		}
	}
	return nil
}

func feedGenBankHeader(code, data string, cont []string, em *Emitter) error {
	joined := func() string {
		return joinText(data, cont)
	}

	switch code {
	case "":
		em.Debug(2, "ignoring orphan header continuation", "text", data)
		return nil
	case "VERSION":
		version := strings.Join(strings.Fields(data), " ")
		if v, gi, ok := strings.Cut(version, " GI:"); ok {
			if err := em.Header(FieldVersion, v); err != nil {
				return err
			}
			return em.Header(FieldGI, gi)
		}
		return em.Header(FieldVersion, version)
	case "REFERENCE":
		ref := strings.Join(strings.Fields(joined()), " ")
		num, bases, _ := strings.Cut(ref, " ")
		if err := em.Header(FieldReferenceNum, num); err != nil {
			return err
		}
		if bases == "" {
			return nil
		}
		return em.Header(FieldReferenceBases, bases)
	case "ORGANISM":
		if err := em.Header(FieldOrganism, data); err != nil {
			return err
		}
		taxonomy := joinText("", cont)
		if taxonomy == "" {
			return nil
		}
		return em.Header(FieldTaxonomy, taxonomy)
	case "COMMENT":
		// Comment continuations keep their indentation; structured comments
		// rely on it.
		text := data
		for _, c := range cont {
			text += "\n" + rtrim(c)
		}
		return em.Header(FieldComment, text)
	}
	if name, ok := genBankTextFields[code]; ok {
		return em.Header(name, joined())
	}
	em.Debug(2, "ignoring header line", "code", code)
	return nil
}

// joinText joins first and the trimmed continuation lines with single spaces.
func joinText(first string, cont []string) string {
	parts := make([]string, 0, len(cont)+1)
	if first != "" {
		parts = append(parts, first)
	}
	for _, c := range cont {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// ParseFooter collects sequence headers and 12-column indented lines as misc
// lines, then the numbered sequence lines. A CONTIG line after sequence data
// returns to misc collection.
func (g genBank) ParseFooter(in *LineReader) (Footer, error) {
	layout := g.Layout()
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
		for layout.isSequenceHeader(in.Line()) || strings.HasPrefix(in.Line(), genBankSpacer) {
			f.Misc = append(f.Misc, rtrim(in.Line()))
			if err := next("footer"); err != nil {
				return Footer{}, err
			}
		}
		for {
			line := rtrim(in.Line())
			if strings.HasPrefix(line, "CONTIG") {
				if !layout.isSequenceHeader(line) {
					return Footer{}, syntaxErrorf(ErrMalformedSequence, line, "malformed CONTIG line")
				}
				break
			}
			switch {
			case line == "":
				return Footer{}, syntaxErrorf(ErrMalformedSequence, line, "blank line in sequence data")
			case line == "//":
				f.Sequence = seq.String()
				return f, nil
			case strings.HasPrefix(line, genBankRecordStart):
				return Footer{}, syntaxErrorf(ErrMalformedSequence, line, "record start before //")
			case len(line) > 9 && line[9] != ' ':
				return Footer{}, syntaxErrorf(ErrMalformedSequence, line, "column 10 must be blank")
			}
			seq.WriteString(strings.ReplaceAll(from(line, 10), " ", ""))
			if err := next("sequence"); err != nil {
				return Footer{}, err
			}
		}
	}
}

func (genBank) FeedFooter(f Footer, em *Emitter) error {
	for i := 0; i < len(f.Misc); i++ {
		line := f.Misc[i]
		switch {
		case strings.HasPrefix(line, "BASE COUNT"):
			if v := strings.TrimSpace(from(line, 10)); v != "" {
				if err := em.Footer(FieldBaseCount, v); err != nil {
					return err
				}
			}
		case strings.HasPrefix(line, "ORIGIN"):
			if v := strings.TrimSpace(from(line, 6)); v != "" {
				if err := em.Footer(FieldOriginName, v); err != nil {
					return err
				}
			}
		case strings.HasPrefix(line, "CONTIG"):
			loc := strings.TrimSpace(from(line, 6))
			for i+1 < len(f.Misc) && strings.HasPrefix(f.Misc[i+1], genBankSpacer) {
				i++
				loc += strings.TrimSpace(f.Misc[i])
			}
			if loc != "" {
				if err := em.Footer(FieldContigLocation, loc); err != nil {
					return err
				}
			}
		default:
			em.Debug(2, "ignoring footer line", "text", line)
		}
	}
	return nil
}
