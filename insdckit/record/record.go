// Package record assembles scanner events into in-memory records.
package record

import (
	"strings"

	"github.com/Doomsbay/InsdcKit/insdckit/insdc"
)

// Reference is one citation of a record.
type Reference struct {
	Number     string   `json:"number"`
	Bases      string   `json:"bases,omitempty"`
	Authors    string   `json:"authors,omitempty"`
	Consortium string   `json:"consortium,omitempty"`
	Title      string   `json:"title,omitempty"`
	Journal    string   `json:"journal,omitempty"`
	MedlineID  string   `json:"medline_id,omitempty"`
	PubMedID   string   `json:"pubmed_id,omitempty"`
	Remark     string   `json:"remark,omitempty"`
	Xrefs      []string `json:"xrefs,omitempty"`
}

// Qualifier is a feature qualifier with quoting and line breaks removed.
type Qualifier struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Flag  bool   `json:"flag,omitempty"`
}

// Feature is a feature table entry with cleaned values. Raw keeps the entry
// as scanned.
type Feature struct {
	Key        string        `json:"key"`
	Location   string        `json:"location"`
	Qualifiers []Qualifier   `json:"qualifiers,omitempty"`
	Raw        insdc.Feature `json:"-"`
}

// Get returns the first value of the qualifier called name.
func (f *Feature) Get(name string) (string, bool) {
	for _, q := range f.Qualifiers {
		if q.Name == name {
			return q.Value, true
		}
	}
	return "", false
}

// All returns every value of the qualifier called name.
func (f *Feature) All(name string) []string {
	var out []string
	for _, q := range f.Qualifiers {
		if q.Name == name {
			out = append(out, q.Value)
		}
	}
	return out
}

// Record is one GenBank or EMBL entry.
type Record struct {
	Dialect        string      `json:"dialect"`
	Locus          string      `json:"locus"`
	Size           string      `json:"size,omitempty"`
	ResidueType    string      `json:"residue_type,omitempty"`
	Topology       string      `json:"topology,omitempty"`
	DataClass      string      `json:"data_class,omitempty"`
	Division       string      `json:"division,omitempty"`
	Date           string      `json:"date,omitempty"`
	Definition     string      `json:"definition,omitempty"`
	Accessions     []string    `json:"accessions,omitempty"`
	Version        string      `json:"version,omitempty"`
	GI             string      `json:"gi,omitempty"`
	NID            string      `json:"nid,omitempty"`
	PID            string      `json:"pid,omitempty"`
	DBSource       string      `json:"db_source,omitempty"`
	Keywords       []string    `json:"keywords,omitempty"`
	Segment        string      `json:"segment,omitempty"`
	Source         string      `json:"source,omitempty"`
	Organism       string      `json:"organism,omitempty"`
	Taxonomy       []string    `json:"taxonomy,omitempty"`
	References     []Reference `json:"references,omitempty"`
	Comment        string      `json:"comment,omitempty"`
	DBXrefs        []string    `json:"dbxrefs,omitempty"`
	BaseCount      string      `json:"base_count,omitempty"`
	OriginName     string      `json:"origin_name,omitempty"`
	ContigLocation string      `json:"contig_location,omitempty"`
	Features       []Feature   `json:"features,omitempty"`
	Sequence       string      `json:"sequence,omitempty"`
	Warnings       []string    `json:"warnings,omitempty"`
}

// ID returns the versioned accession, falling back to the primary accession
// and then the locus name.
func (r *Record) ID() string {
	switch {
	case r.Version != "":
		return r.Version
	case len(r.Accessions) > 0:
		return r.Accessions[0]
	default:
		return r.Locus
	}
}

// Accession returns the primary accession or the locus name.
func (r *Record) Accession() string {
	if len(r.Accessions) > 0 {
		return r.Accessions[0]
	}
	return r.Locus
}

// IsProtein reports whether the sequence holds amino acids, that is any
// letter outside the IUPAC nucleotide codes.
func (r *Record) IsProtein() bool {
	for i := 0; i < len(r.Sequence); i++ {
		if !strings.ContainsRune(nucleotideCodes, rune(r.Sequence[i]|0x20)) {
			return true
		}
	}
	return false
}

const nucleotideCodes = "acgtunrykmswbdhv-."

// CleanQualifier strips the surrounding quotes of a raw value, unescapes
// doubled quotes and folds line breaks. Translations lose their line breaks
// entirely; other values get a space in their place.
func CleanQualifier(q insdc.Qualifier) Qualifier {
	if !q.HasValue {
		return Qualifier{Name: q.Name, Flag: true}
	}
	v := q.Value
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = strings.ReplaceAll(v[1:len(v)-1], `""`, `"`)
	}
	if q.Name == "translation" {
		v = strings.ReplaceAll(v, "\n", "")
		v = strings.ReplaceAll(v, " ", "")
	} else {
		v = strings.ReplaceAll(v, "\n", " ")
		v = strings.ReplaceAll(v, "  ", " ")
	}
	return Qualifier{Name: q.Name, Value: v}
}

// CleanFeature converts a scanned feature. Spaces are removed from the
// location.
func CleanFeature(f insdc.Feature) Feature {
	out := Feature{
		Key:      f.Key,
		Location: strings.ReplaceAll(f.Location, " ", ""),
		Raw:      f,
	}
	if len(f.Qualifiers) > 0 {
		out.Qualifiers = make([]Qualifier, len(f.Qualifiers))
		for i, q := range f.Qualifiers {
			out.Qualifiers[i] = CleanQualifier(q)
		}
	}
	return out
}
