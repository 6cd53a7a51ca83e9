package record

import (
	"errors"
	"fmt"
)

// ErrMultipleTranslations is returned by CDS for a CDS feature carrying more
// than one /translation.
var ErrMultipleTranslations = errors.New("multiple translations")

// DefaultCDSTags name the qualifiers used for a protein's ID, name and
// description.
var DefaultCDSTags = [3]string{"protein_id", "locus_tag", "product"}

// Protein is a CDS feature lifted out of its record.
type Protein struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	Sequence    string            `json:"sequence,omitempty"`
	DBXrefs     []string          `json:"dbxrefs,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	Parent      string            `json:"parent"`
}

// CDS returns one Protein per CDS feature of rec. tags pick the qualifiers
// for ID, name and description; features lacking one get a placeholder.
// /translation becomes the sequence, /db_xref values are collected and every
// other qualifier is kept as an annotation, repeats joined by a space.
func CDS(rec *Record, tags [3]string) ([]Protein, error) {
	var out []Protein
	for i := range rec.Features {
		f := &rec.Features[i]
		if f.Key != "CDS" {
			continue
		}
		p := Protein{
			ID:          "<unknown id>",
			Name:        "<unknown name>",
			Description: "<unknown description>",
			Location:    f.Location,
			Annotations: make(map[string]string),
			Parent:      rec.ID(),
		}
		if v, ok := f.Get(tags[0]); ok {
			p.ID = v
		}
		if v, ok := f.Get(tags[1]); ok {
			p.Name = v
		}
		if v, ok := f.Get(tags[2]); ok {
			p.Description = v
		}
		translations := 0
		for _, q := range f.Qualifiers {
			switch q.Name {
			case "translation":
				translations++
				if translations > 1 {
					return out, fmt.Errorf("%s: CDS %s at %s: %w", rec.ID(), p.ID, f.Location, ErrMultipleTranslations)
				}
				p.Sequence = q.Value
			case "db_xref":
				p.DBXrefs = append(p.DBXrefs, q.Value)
			default:
				if prev, ok := p.Annotations[q.Name]; ok {
					p.Annotations[q.Name] = prev + " " + q.Value
				} else {
					p.Annotations[q.Name] = q.Value
				}
			}
		}
		out = append(out, p)
	}
	return out, nil
}
