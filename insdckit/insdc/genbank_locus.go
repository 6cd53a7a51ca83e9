package insdc

import (
	"strings"
)

var locusUnits = []string{" bp ", " aa "}

// locusCheck pins the content of a column range of the LOCUS line.
type locusCheck struct {
	start, end int
	trim       bool
	allowed    []string
	what       string
}

// locusLayout is one historical arrangement of the LOCUS line, recognized by
// the units marker at unitsAt.
type locusLayout struct {
	name     string
	unitsAt  int
	nameEnd  int // name and length occupy [12:nameEnd]
	checks   []locusCheck
	residue  [2]int
	topology [2]int
	division [2]int
	date     [2]int
}

var topologies = []string{"", "linear", "circular"}

var locusLayouts = []locusLayout{
	{
		name:    "pre-2004",
		unitsAt: 29,
		nameEnd: 29,
		checks: []locusCheck{
			{start: 41, end: 42, allowed: []string{" "}, what: "column 42 must be blank"},
			{start: 42, end: 51, trim: true, allowed: topologies, what: "topology"},
			{start: 51, end: 52, allowed: []string{" "}, what: "column 52 must be blank"},
			{start: 55, end: 62, allowed: []string{"       "}, what: "columns 56-62 must be blank"},
			{start: 64, end: 65, allowed: []string{"-"}, what: "date separator at column 65"},
			{start: 68, end: 69, allowed: []string{"-"}, what: "date separator at column 69"},
		},
		residue:  [2]int{33, 41},
		topology: [2]int{42, 51},
		division: [2]int{52, 55},
		date:     [2]int{62, 73},
	},
	{
		name:    "modern",
		unitsAt: 40,
		nameEnd: 40,
		checks: []locusCheck{
			{start: 44, end: 47, allowed: []string{"   ", "ss-", "ds-", "ms-"}, what: "strand type"},
			{start: 47, end: 54, trim: true, allowed: []string{"", "DNA", "RNA", "tRNA", "mRNA", "uRNA", "snRNA", "rRNA", "cRNA", "ncRNA"}, what: "molecule type"},
			{start: 54, end: 55, allowed: []string{" "}, what: "column 55 must be blank"},
			{start: 55, end: 63, trim: true, allowed: topologies, what: "topology"},
			{start: 63, end: 64, allowed: []string{" "}, what: "column 64 must be blank"},
			{start: 67, end: 68, allowed: []string{" "}, what: "column 68 must be blank"},
			{start: 70, end: 71, allowed: []string{"-"}, what: "date separator at column 71"},
			{start: 74, end: 75, allowed: []string{"-"}, what: "date separator at column 75"},
		},
		residue:  [2]int{44, 54},
		topology: [2]int{55, 63},
		division: [2]int{64, 67},
		date:     [2]int{68, 79},
	},
}

func (ll *locusLayout) matches(line string) bool {
	units := cut(line, ll.unitsAt, ll.unitsAt+4)
	for _, u := range locusUnits {
		if units == u {
			return true
		}
	}
	return false
}

func (ll *locusLayout) check(line string) error {
	for _, c := range ll.checks {
		got := cut(line, c.start, c.end)
		if c.trim {
			got = strings.TrimSpace(got)
		}
		ok := false
		for _, a := range c.allowed {
			if got == a {
				ok = true
				break
			}
		}
		if !ok {
			return syntaxErrorf(ErrMalformedLocusLine, line, "%s layout: unexpected %s %q", ll.name, c.what, got)
		}
	}
	return nil
}

func (ll *locusLayout) feed(line string, em *Emitter) error {
	if err := ll.check(line); err != nil {
		return err
	}
	nameLength := strings.Fields(cut(line, 12, ll.nameEnd))
	switch len(nameLength) {
	case 2:
	case 0, 1:
		return syntaxErrorf(ErrMissingLength, line, "locus name and length run together")
	default:
		return syntaxErrorf(ErrMalformedLocusLine, line, "cannot split locus name and length")
	}
	em.Debug(2, "LOCUS line layout", "layout", ll.name)
	fields := []Field{
		{FieldLocus, nameLength[0]},
		{FieldSize, nameLength[1]},
		{FieldResidueType, strings.TrimSpace(cut(line, ll.residue[0], ll.residue[1]))},
		{FieldTopology, strings.TrimSpace(cut(line, ll.topology[0], ll.topology[1]))},
		{FieldDivision, strings.TrimSpace(cut(line, ll.division[0], ll.division[1]))},
		{FieldDate, strings.TrimSpace(cut(line, ll.date[0], ll.date[1]))},
	}
	return emitHeaderFields(em, fields)
}

func emitHeaderFields(em *Emitter, fields []Field) error {
	for _, f := range fields {
		if f.Value == "" && f.Name != FieldLocus {
			continue
		}
		if err := em.Header(f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// feedLocusLine interprets a GenBank LOCUS line. The fixed layouts are tried
// first; a line no layout recognizes falls back to splitting on whitespace,
// which covers long names that push the columns out of place.
func feedLocusLine(line string, em *Emitter) error {
	for i := range locusLayouts {
		if locusLayouts[i].matches(line) {
			return locusLayouts[i].feed(line, em)
		}
	}

	rest := strings.TrimSpace(from(line, genBankHeaderWidth))
	if !strings.Contains(rest, " ") {
		if rest == "" {
			return em.Warn("minimal LOCUS line without a name")
		}
		if err := em.Header(FieldLocus, rest); err != nil {
			return err
		}
		return em.Warn("truncated LOCUS line", "locus", rest)
	}

	tokens := strings.Fields(rest)
	if len(tokens) < 3 || !isLocusUnit(tokens[2]) {
		return syntaxErrorf(ErrMalformedLocusLine, line, "unrecognized layout")
	}
	em.Debug(2, "LOCUS line layout", "layout", "whitespace")
	fields := []Field{{FieldLocus, tokens[0]}, {FieldSize, tokens[1]}}
	tail := tokens[3:]
	var date, division, topology string
	if n := len(tail); n > 0 && isLocusDate(tail[n-1]) {
		date = tail[n-1]
		tail = tail[:n-1]
	}
	if n := len(tail); n > 0 && isDivision(tail[n-1]) {
		division = tail[n-1]
		tail = tail[:n-1]
	}
	if n := len(tail); n > 0 && (tail[n-1] == "linear" || tail[n-1] == "circular") {
		topology = tail[n-1]
		tail = tail[:n-1]
	}
	fields = append(fields,
		Field{FieldResidueType, strings.Join(tail, " ")},
		Field{FieldTopology, topology},
		Field{FieldDivision, division},
		Field{FieldDate, date},
	)
	return emitHeaderFields(em, fields)
}

func isLocusUnit(s string) bool {
	switch strings.ToLower(s) {
	case "bp", "aa", "rc":
		return true
	}
	return false
}

// isLocusDate matches DD-MMM-YYYY.
func isLocusDate(s string) bool {
	return len(s) == 11 && s[2] == '-' && s[6] == '-'
}

func isDivision(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
