package insdc

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestEmitter(rec *recorder, dialect string) *Emitter {
	return &Emitter{h: rec, dialect: dialect, logger: log.New(io.Discard)}
}

func TestGenBankLocusLine(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		want     map[FieldName]string
		warnings int
	}{
		{
			name: "pre-2004 layout",
			line: "LOCUS       SCU49845     5028 bp    DNA             PLN       21-JUN-1999",
			want: map[FieldName]string{
				FieldLocus: "SCU49845", FieldSize: "5028", FieldResidueType: "DNA",
				FieldDivision: "PLN", FieldDate: "21-JUN-1999",
			},
		},
		{
			name: "modern layout",
			line: "LOCUS       AAD51968                 143 aa            linear   BCT 21-AUG-2001",
			want: map[FieldName]string{
				FieldLocus: "AAD51968", FieldSize: "143", FieldTopology: "linear",
				FieldDivision: "BCT", FieldDate: "21-AUG-2001",
			},
		},
		{
			name: "modern layout with strand",
			line: "LOCUS       NC_001422               5386 bp ss-DNA     circular PHG 06-JUL-2018",
			want: map[FieldName]string{
				FieldLocus: "NC_001422", FieldSize: "5386", FieldResidueType: "ss-DNA",
				FieldTopology: "circular", FieldDivision: "PHG", FieldDate: "06-JUL-2018",
			},
		},
		{
			name: "long name",
			line: "LOCUS       NZ_CP0123456789012345 4641652 bp    DNA     circular CON 09-MAR-2022",
			want: map[FieldName]string{
				FieldLocus: "NZ_CP0123456789012345", FieldSize: "4641652", FieldResidueType: "DNA",
				FieldTopology: "circular", FieldDivision: "CON", FieldDate: "09-MAR-2022",
			},
		},
		{
			name:     "truncated",
			line:     "LOCUS       U00096",
			want:     map[FieldName]string{FieldLocus: "U00096"},
			warnings: 1,
		},
		{
			name:     "minimal",
			line:     "LOCUS       ",
			want:     map[FieldName]string{},
			warnings: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			if err := GenBank.FeedFirstLine(tc.line, newTestEmitter(rec, "genbank")); err != nil {
				t.Fatalf("FeedFirstLine: %v", err)
			}
			got := rec.fields()
			if len(got) != len(tc.want) {
				t.Fatalf("fields = %q, want %q", got, tc.want)
			}
			for name, want := range tc.want {
				wantField(t, got, name, want)
			}
			warnings := 0
			for _, ev := range rec.events {
				if ev.Kind == EventWarning {
					warnings++
				}
			}
			if warnings != tc.warnings {
				t.Fatalf("warnings = %d, want %d", warnings, tc.warnings)
			}
		})
	}
}

func TestGenBankLocusLineErrors(t *testing.T) {
	cases := []struct {
		name string
		line string
		kind error
	}{
		{"name and length collide", "LOCUS       ABCDEFGHIJKLM5028 bp    DNA             PLN       21-JUN-1999", ErrMissingLength},
		{"bad date separator", "LOCUS       SCU49845     5028 bp    DNA             PLN       21xJUN-1999", ErrMalformedLocusLine},
		{"bad topology", "LOCUS       SCU49845     5028 bp    DNA     twisted PLN       21-JUN-1999", ErrMalformedLocusLine},
		{"bad molecule type", "LOCUS       AAD51968                 143 aa    XNA     linear   BCT 21-AUG-2001", ErrMalformedLocusLine},
		{"unrecognized", "LOCUS       X Y Z", ErrMalformedLocusLine},
		{"not a LOCUS line", "ID   X56734; SV 1; linear; mRNA; STD; PLN; 1859 BP.", ErrMalformedRecordStart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := GenBank.FeedFirstLine(tc.line, newTestEmitter(&recorder{}, "genbank"))
			if !errors.Is(err, tc.kind) {
				t.Fatalf("err = %v, want %v", err, tc.kind)
			}
		})
	}
}

func TestGenBankHeaderLines(t *testing.T) {
	lines := []string{
		"DEFINITION  first",
		"            second.",
		"VERSION     AB000001.2",
		"REFERENCE   4",
		"  AUTHORS   Doe,J.",
		"  CONSRTM   Some Consortium",
		"  REMARK    Erratum",
		"COMMENT     PROVISIONAL REFSEQ.",
		"            ##Assembly-Data-START##",
		"            Assembly Method       :: SPAdes",
		"",
		"UNKNOWN     ignored",
		"DBLINK      BioProject: PRJNA1",
	}
	rec := &recorder{}
	if err := GenBank.FeedHeaderLines(lines, newTestEmitter(rec, "genbank")); err != nil {
		t.Fatalf("FeedHeaderLines: %v", err)
	}
	f := rec.fields()
	wantField(t, f, FieldDefinition, "first second.")
	wantField(t, f, FieldVersion, "AB000001.2")
	wantField(t, f, FieldReferenceNum, "4")
	wantField(t, f, FieldAuthors, "Doe,J.")
	wantField(t, f, FieldConsortium, "Some Consortium")
	wantField(t, f, FieldRemark, "Erratum")
	wantField(t, f, FieldComment, "PROVISIONAL REFSEQ.\n##Assembly-Data-START##\nAssembly Method       :: SPAdes")
	wantField(t, f, FieldDBXref, "BioProject: PRJNA1")
	if _, ok := f[FieldGI]; ok {
		t.Fatalf("gi emitted for VERSION without GI")
	}
	if _, ok := f[FieldReferenceBases]; ok {
		t.Fatalf("reference_bases emitted for REFERENCE without range")
	}
}

func TestGenBankContigFooter(t *testing.T) {
	input := "LOCUS       SCU49845     5028 bp    DNA             PLN       21-JUN-1999\n" +
		"DEFINITION  scaffold.\n" +
		"CONTIG      join(AAA01000001.1:1..100,\n" +
		"            gap(10))\n" +
		"//\n"
	rec := scanOne(t, GenBank, input, Options{})
	wantField(t, rec.fields(), FieldContigLocation, "join(AAA01000001.1:1..100,gap(10))")
	if rec.sequence() != "" {
		t.Fatalf("sequence = %q, want none", rec.sequence())
	}
}

func TestGenBankContigAfterSequence(t *testing.T) {
	input := "LOCUS       SCU49845     5028 bp    DNA             PLN       21-JUN-1999\n" +
		"BASE COUNT     1 a      1 c      1 g      1 t\n" +
		"ORIGIN      chromosome IX\n" +
		"        1 acgt\n" +
		"CONTIG      join(U49845.1:1..4)\n" +
		"//\n"
	rec := scanOne(t, GenBank, input, Options{})
	f := rec.fields()
	wantField(t, f, FieldBaseCount, "1 a      1 c      1 g      1 t")
	wantField(t, f, FieldOriginName, "chromosome IX")
	wantField(t, f, FieldContigLocation, "join(U49845.1:1..4)")
	if rec.sequence() != "acgt" {
		t.Fatalf("sequence = %q", rec.sequence())
	}
}

func TestGenBankFooterErrors(t *testing.T) {
	head := "LOCUS       SCU49845     5028 bp    DNA             PLN       21-JUN-1999\nORIGIN\n"
	cases := []struct {
		name string
		body string
	}{
		{"blank line", "        1 acgt\n\n//\n"},
		{"column 10", "        1xacgt\n//\n"},
		{"contig with a longer code", "        1 acgt\nCONTIGS     junk\n//\n"},
		{"contig with a tab", "        1 acgt\nCONTIG\tjoin(U49845.1:1..4)\n//\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestScanner(t, head+tc.body, GenBank, Options{}).Next(&recorder{})
			if !errors.Is(err, ErrMalformedSequence) {
				t.Fatalf("err = %v, want malformed sequence", err)
			}
		})
	}
}
