package insdc

import (
	"strings"
)

// Qualifier is one /name or /name=value entry of a feature. HasValue
// distinguishes a flag such as /pseudo from an empty /note="" value.
type Qualifier struct {
	Name     string
	Value    string
	HasValue bool
}

// Feature is a feature table entry with its values as they appear in the
// file: quotes are kept and continuation lines are joined with "\n".
type Feature struct {
	Key        string
	Location   string
	Qualifiers []Qualifier
}

// Values returns the raw values of all qualifiers called name.
func (f Feature) Values(name string) []string {
	var out []string
	for _, q := range f.Qualifiers {
		if q.Name == name && q.HasValue {
			out = append(out, q.Value)
		}
	}
	return out
}

// Has reports whether the feature carries a qualifier called name.
func (f Feature) Has(name string) bool {
	for _, q := range f.Qualifiers {
		if q.Name == name {
			return true
		}
	}
	return false
}

// ParseFeature tokenizes the lines of one feature. lines are the text after
// the qualifier indent: the first holds the start of the location, the rest
// are continuation lines. Blank lines are ignored.
func ParseFeature(key string, lines []string) (Feature, error) {
	fail := func(kind error, detail string) error {
		return &SyntaxError{
			Kind:    kind,
			State:   StateFeatures,
			Detail:  detail,
			Feature: key,
			Lines:   lines,
		}
	}

	body := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			body = append(body, l)
		}
	}
	if len(body) == 0 {
		return Feature{}, fail(ErrMalformedFeature, "missing location")
	}

	loc := strings.TrimSpace(body[0])
	i := 1
	for strings.HasSuffix(loc, ",") {
		if i >= len(body) {
			return Feature{}, fail(ErrMalformedFeature, "location continues past the end of the feature")
		}
		loc += strings.TrimSpace(body[i])
		i++
	}
	if strings.HasPrefix(loc, "/") {
		return Feature{}, fail(ErrMalformedFeature, "missing location")
	}

	f := Feature{Key: key, Location: loc}
	for i < len(body) {
		line := body[i]
		i++
		if strings.HasPrefix(line, "/") {
			name, value, hasValue := strings.Cut(line[1:], "=")
			if !hasValue {
				f.Qualifiers = append(f.Qualifiers, Qualifier{Name: name})
				continue
			}
			// A lone quote is a complete value, not an opening one.
			if strings.HasPrefix(value, `"`) && value != `"` && !strings.HasSuffix(value, `"`) {
				for {
					if i >= len(body) {
						return Feature{}, fail(ErrUnterminatedQuote, "/"+name+" has no closing quote")
					}
					value += "\n" + body[i]
					i++
					if strings.HasSuffix(value, `"`) {
						break
					}
				}
			}
			f.Qualifiers = append(f.Qualifiers, Qualifier{Name: name, Value: value, HasValue: true})
			continue
		}

		if len(f.Qualifiers) == 0 {
			return Feature{}, fail(ErrOrphanedContinuation, "continuation line before any qualifier")
		}
		last := &f.Qualifiers[len(f.Qualifiers)-1]
		if !last.HasValue {
			return Feature{}, fail(ErrOrphanedContinuation, "continuation of flag qualifier /"+last.Name)
		}
		last.Value += "\n" + line
	}
	return f, nil
}
