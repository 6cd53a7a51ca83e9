package insdc

import (
	"errors"
	"testing"
)

func TestParseFeature(t *testing.T) {
	cases := []struct {
		name     string
		lines    []string
		location string
		quals    []Qualifier
	}{
		{
			name:     "location only",
			lines:    []string{"1..5028"},
			location: "1..5028",
		},
		{
			name:     "location continued after comma",
			lines:    []string{"join(1..10,", "20..30,", "40..50)", `/gene="x"`},
			location: "join(1..10,20..30,40..50)",
			quals:    []Qualifier{{Name: "gene", Value: `"x"`, HasValue: true}},
		},
		{
			name:     "flag and unquoted value",
			lines:    []string{"1..10", "/pseudo", "/codon_start=1"},
			location: "1..10",
			quals: []Qualifier{
				{Name: "pseudo"},
				{Name: "codon_start", Value: "1", HasValue: true},
			},
		},
		{
			name:     "quoted value across lines",
			lines:    []string{"687..3158", `/function="required for axial budding pattern of S.`, `cerevisiae"`, `/product="Axl2p"`},
			location: "687..3158",
			quals: []Qualifier{
				{Name: "function", Value: "\"required for axial budding pattern of S.\ncerevisiae\"", HasValue: true},
				{Name: "product", Value: `"Axl2p"`, HasValue: true},
			},
		},
		{
			name:     "lone quote is a closed value",
			lines:    []string{"1..10", `/note="`, `/gene="abc"`},
			location: "1..10",
			quals: []Qualifier{
				{Name: "note", Value: `"`, HasValue: true},
				{Name: "gene", Value: `"abc"`, HasValue: true},
			},
		},
		{
			name:     "lone quote at the end of the feature",
			lines:    []string{"1..10", `/note="`},
			location: "1..10",
			quals:    []Qualifier{{Name: "note", Value: `"`, HasValue: true}},
		},
		{
			name:     "lone quote then bare line",
			lines:    []string{"1..10", `/note="`, "more"},
			location: "1..10",
			quals:    []Qualifier{{Name: "note", Value: "\"\nmore", HasValue: true}},
		},
		{
			name:     "quoted value over three lines",
			lines:    []string{"1..10", `/note="first`, "second", `third"`},
			location: "1..10",
			quals:    []Qualifier{{Name: "note", Value: "\"first\nsecond\nthird\"", HasValue: true}},
		},
		{
			name:     "quote swallows slash lines",
			lines:    []string{"1..10", `/note="see`, `/gene="x" inside"`},
			location: "1..10",
			quals:    []Qualifier{{Name: "note", Value: "\"see\n/gene=\"x\" inside\"", HasValue: true}},
		},
		{
			name:     "repeated db_xref keeps order",
			lines:    []string{"1..10", `/db_xref="GI:1293614"`, `/note="x"`, `/db_xref="taxon:4932"`},
			location: "1..10",
			quals: []Qualifier{
				{Name: "db_xref", Value: `"GI:1293614"`, HasValue: true},
				{Name: "note", Value: `"x"`, HasValue: true},
				{Name: "db_xref", Value: `"taxon:4932"`, HasValue: true},
			},
		},
		{
			name:     "empty quoted value",
			lines:    []string{"1..10", `/note=""`},
			location: "1..10",
			quals:    []Qualifier{{Name: "note", Value: `""`, HasValue: true}},
		},
		{
			name:     "empty unquoted value",
			lines:    []string{"1..10", "/note="},
			location: "1..10",
			quals:    []Qualifier{{Name: "note", HasValue: true}},
		},
		{
			name:     "unquoted continuation",
			lines:    []string{"1..10", "/inference=ab", "cd"},
			location: "1..10",
			quals:    []Qualifier{{Name: "inference", Value: "ab\ncd", HasValue: true}},
		},
		{
			name:     "escaped quotes kept raw",
			lines:    []string{"1..10", `/note="say ""hi"""`},
			location: "1..10",
			quals:    []Qualifier{{Name: "note", Value: `"say ""hi"""`, HasValue: true}},
		},
		{
			name:     "blank lines ignored",
			lines:    []string{"1..10", "", `/gene="a"`, "   "},
			location: "1..10",
			quals:    []Qualifier{{Name: "gene", Value: `"a"`, HasValue: true}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseFeature("CDS", tc.lines)
			if err != nil {
				t.Fatalf("ParseFeature: %v", err)
			}
			if f.Key != "CDS" || f.Location != tc.location {
				t.Fatalf("key/location = %q %q", f.Key, f.Location)
			}
			if len(f.Qualifiers) != len(tc.quals) {
				t.Fatalf("qualifiers = %+v, want %+v", f.Qualifiers, tc.quals)
			}
			for i := range tc.quals {
				if f.Qualifiers[i] != tc.quals[i] {
					t.Fatalf("qualifier %d = %+v, want %+v", i, f.Qualifiers[i], tc.quals[i])
				}
			}
		})
	}
}

func TestParseFeatureErrors(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		kind  error
	}{
		{"no location", nil, ErrMalformedFeature},
		{"qualifier as location", []string{`/gene="a"`}, ErrMalformedFeature},
		{"location runs off the end", []string{"join(1..10,"}, ErrMalformedFeature},
		{"orphaned continuation", []string{"1..10", "stray text"}, ErrOrphanedContinuation},
		{"continued flag", []string{"1..10", "/pseudo", "stray text"}, ErrOrphanedContinuation},
		{"unterminated quote", []string{"1..10", `/note="open`, "still open"}, ErrUnterminatedQuote},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFeature("misc_feature", tc.lines)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("err = %v, want %v", err, tc.kind)
			}
			var se *SyntaxError
			if !errors.As(err, &se) || se.Feature != "misc_feature" {
				t.Fatalf("error does not name the feature: %v", err)
			}
		})
	}
}

func TestFeatureValues(t *testing.T) {
	f := Feature{Qualifiers: []Qualifier{
		{Name: "db_xref", Value: `"GI:1"`, HasValue: true},
		{Name: "pseudo"},
		{Name: "db_xref", Value: `"taxon:2"`, HasValue: true},
	}}
	if got := f.Values("db_xref"); len(got) != 2 || got[1] != `"taxon:2"` {
		t.Fatalf("Values = %q", got)
	}
	if !f.Has("pseudo") || f.Has("gene") {
		t.Fatalf("Has reports wrong qualifiers")
	}
}
