package record

import (
	"fmt"
	"strings"

	"github.com/Doomsbay/InsdcKit/insdckit/insdc"
)

// Builder is an insdc.Handler that assembles events into Records.
type Builder struct {
	onRecord func(*Record) error

	cur      *Record
	keywords []string
	taxonomy []string
	done     []*Record
}

// NewBuilder returns a Builder. Completed records are passed to onRecord;
// with a nil callback they are queued for Take.
func NewBuilder(onRecord func(*Record) error) *Builder {
	return &Builder{onRecord: onRecord}
}

// Take returns the oldest queued record, or nil.
func (b *Builder) Take() *Record {
	if len(b.done) == 0 {
		return nil
	}
	r := b.done[0]
	b.done[0] = nil
	b.done = b.done[1:]
	return r
}

// Reset drops a partially built record, after a scan error.
func (b *Builder) Reset() {
	b.cur = nil
	b.keywords = nil
	b.taxonomy = nil
}

func (b *Builder) Handle(ev insdc.Event) error {
	if ev.Kind == insdc.EventStartRecord {
		b.Reset()
		b.cur = &Record{Dialect: ev.Dialect}
		return nil
	}
	if b.cur == nil {
		return fmt.Errorf("%s event outside a record", ev.Kind)
	}
	switch ev.Kind {
	case insdc.EventHeaderField:
		b.header(ev.Field)
	case insdc.EventFeature:
		b.cur.Features = append(b.cur.Features, CleanFeature(ev.Feature))
	case insdc.EventFooterField:
		b.footer(ev.Field)
	case insdc.EventSequence:
		b.cur.Sequence = ev.Sequence
	case insdc.EventWarning:
		b.cur.Warnings = append(b.cur.Warnings, ev.Message)
	case insdc.EventEndRecord:
		return b.finish()
	}
	return nil
}

func (b *Builder) finish() error {
	r := b.cur
	r.Keywords = splitList(strings.Join(b.keywords, " "))
	r.Taxonomy = splitList(strings.Join(b.taxonomy, " "))
	if r.Dialect == insdc.EMBL.Name() {
		for i := range r.References {
			ref := &r.References[i]
			ref.Authors = strings.TrimSuffix(ref.Authors, ";")
			ref.Consortium = strings.TrimSuffix(ref.Consortium, ";")
			ref.Title = strings.Trim(strings.TrimSuffix(ref.Title, ";"), `"`)
		}
	}
	b.Reset()
	if b.onRecord != nil {
		return b.onRecord(r)
	}
	b.done = append(b.done, r)
	return nil
}

func (b *Builder) ref() *Reference {
	r := b.cur
	if len(r.References) == 0 {
		r.References = append(r.References, Reference{})
	}
	return &r.References[len(r.References)-1]
}

func (b *Builder) header(f insdc.Field) {
	r := b.cur
	v := f.Value
	switch f.Name {
	case insdc.FieldLocus:
		r.Locus = v
	case insdc.FieldSize:
		r.Size = v
	case insdc.FieldResidueType:
		r.ResidueType = v
	case insdc.FieldTopology:
		r.Topology = v
	case insdc.FieldDataClass:
		r.DataClass = v
	case insdc.FieldDivision:
		r.Division = v
	case insdc.FieldDate:
		r.Date = v
	case insdc.FieldDefinition:
		appendText(&r.Definition, v)
	case insdc.FieldAccession:
		for _, acc := range strings.FieldsFunc(v, func(c rune) bool { return c == ';' || c == ' ' }) {
			r.Accessions = append(r.Accessions, acc)
		}
	case insdc.FieldVersion:
		r.Version = v
	case insdc.FieldGI:
		r.GI = v
	case insdc.FieldNID:
		r.NID = v
	case insdc.FieldPID:
		r.PID = v
	case insdc.FieldDBSource:
		appendText(&r.DBSource, v)
	case insdc.FieldKeywords:
		b.keywords = append(b.keywords, v)
	case insdc.FieldSegment:
		r.Segment = v
	case insdc.FieldSource:
		appendText(&r.Source, v)
	case insdc.FieldOrganism:
		appendText(&r.Organism, v)
	case insdc.FieldTaxonomy:
		b.taxonomy = append(b.taxonomy, v)
	case insdc.FieldReferenceNum:
		r.References = append(r.References, Reference{Number: v})
	case insdc.FieldReferenceBases:
		b.ref().Bases = v
	case insdc.FieldAuthors:
		appendText(&b.ref().Authors, v)
	case insdc.FieldConsortium:
		appendText(&b.ref().Consortium, v)
	case insdc.FieldTitle:
		appendText(&b.ref().Title, v)
	case insdc.FieldJournal:
		appendText(&b.ref().Journal, v)
	case insdc.FieldMedlineID:
		b.ref().MedlineID = v
	case insdc.FieldPubMedID:
		b.ref().PubMedID = v
	case insdc.FieldRemark:
		appendText(&b.ref().Remark, v)
	case insdc.FieldReferenceXref:
		ref := b.ref()
		ref.Xrefs = append(ref.Xrefs, v)
	case insdc.FieldComment:
		if r.Comment != "" {
			r.Comment += "\n"
		}
		r.Comment += v
	case insdc.FieldDBXref:
		r.DBXrefs = append(r.DBXrefs, v)
	}
}

func (b *Builder) footer(f insdc.Field) {
	switch f.Name {
	case insdc.FieldBaseCount:
		b.cur.BaseCount = f.Value
	case insdc.FieldOriginName:
		b.cur.OriginName = f.Value
	case insdc.FieldContigLocation:
		b.cur.ContigLocation += f.Value
	}
}

func appendText(dst *string, v string) {
	if v == "" {
		return
	}
	if *dst != "" {
		*dst += " "
	}
	*dst += v
}

// splitList splits "a; b; c." style lists.
func splitList(s string) []string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	var out []string
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
