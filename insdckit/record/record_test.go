package record

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/Doomsbay/InsdcKit/insdckit/insdc"
)

func openTestdata(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open("../insdc/testdata/" + name)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func readOne(t *testing.T, name string) *Record {
	t.Helper()
	recs, err := ReadAll(openTestdata(t, name), Options{})
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	return recs[0]
}

func TestReadGenBank(t *testing.T) {
	rec := readOne(t, "U49845.gb")

	if rec.Dialect != "genbank" || rec.ID() != "U49845.1" || rec.Accession() != "U49845" {
		t.Fatalf("identity = %s %s %s", rec.Dialect, rec.ID(), rec.Accession())
	}
	if len(rec.Keywords) != 0 {
		t.Fatalf("keywords = %q, want none", rec.Keywords)
	}
	if len(rec.Taxonomy) != 8 || rec.Taxonomy[0] != "Eukaryota" || rec.Taxonomy[7] != "Saccharomyces" {
		t.Fatalf("taxonomy = %q", rec.Taxonomy)
	}
	if len(rec.References) != 3 {
		t.Fatalf("references = %d, want 3", len(rec.References))
	}
	ref := rec.References[0]
	if ref.Number != "1" || ref.Bases != "(bases 1 to 5028)" || ref.PubMedID != "7871890" {
		t.Fatalf("reference 1 = %+v", ref)
	}
	if ref.Title != "Cloning and sequence of REV7, a gene whose function is required for DNA damage-induced mutagenesis in Saccharomyces cerevisiae" {
		t.Fatalf("title = %q", ref.Title)
	}
	if rec.IsProtein() {
		t.Fatalf("nucleotide record reported as protein")
	}

	cds := rec.Features[3]
	if v, _ := cds.Get("function"); v != "required for axial budding pattern of S. cerevisiae" {
		t.Fatalf("function = %q", v)
	}
	if v, _ := cds.Get("codon_start"); v != "1" {
		t.Fatalf("codon_start = %q", v)
	}
	if tr, _ := cds.Get("translation"); strings.ContainsAny(tr, " \n") || !strings.HasPrefix(tr, "MTQLQISLLL") {
		t.Fatalf("translation = %q", tr)
	}
	if len(cds.Raw.Qualifiers) != len(cds.Qualifiers) {
		t.Fatalf("raw feature not kept")
	}
}

func TestReadEMBL(t *testing.T) {
	rec := readOne(t, "X56734.embl")

	if rec.Dialect != "embl" || rec.ID() != "X56734.1" {
		t.Fatalf("identity = %s %s", rec.Dialect, rec.ID())
	}
	if strings.Join(rec.Accessions, ",") != "X56734,S46826" {
		t.Fatalf("accessions = %q", rec.Accessions)
	}
	if rec.Date != "25-NOV-2005" {
		t.Fatalf("date = %q", rec.Date)
	}
	if strings.Join(rec.Keywords, ",") != "beta-glucosidase" {
		t.Fatalf("keywords = %q", rec.Keywords)
	}
	if len(rec.Taxonomy) != 16 || rec.Taxonomy[15] != "Trifolium" {
		t.Fatalf("taxonomy = %q", rec.Taxonomy)
	}
	ref := rec.References[0]
	if ref.Number != "5" || ref.Authors != "Oxtoby E., Dunn M.A., Pancoro A., Hughes M.A." {
		t.Fatalf("reference = %+v", ref)
	}
	if !strings.HasPrefix(ref.Title, "Nucleotide and derived") || strings.HasSuffix(ref.Title, `";`) {
		t.Fatalf("title = %q", ref.Title)
	}
	if rec.References[1].Title != "" {
		t.Fatalf("empty title = %q", rec.References[1].Title)
	}
	if len(rec.Sequence) != 1859 {
		t.Fatalf("sequence length = %d", len(rec.Sequence))
	}
}

func TestReadProtein(t *testing.T) {
	rec := readOne(t, "AAD51968.gp")
	if !rec.IsProtein() {
		t.Fatalf("GenPept record not reported as protein")
	}
	if rec.References[0].MedlineID != "20138369" || rec.References[0].PubMedID != "10672189" {
		t.Fatalf("reference ids = %+v", rec.References[0])
	}
}

func TestReaderResync(t *testing.T) {
	gb, err := io.ReadAll(openTestdata(t, "U49845.gb"))
	if err != nil {
		t.Fatal(err)
	}
	gp, err := io.ReadAll(openTestdata(t, "AAD51968.gp"))
	if err != nil {
		t.Fatal(err)
	}
	broken := strings.Replace(string(gb), "/gene=\"AXL2\"\n     CDS", "/gene=\"AXL2\n     CDS", 1)
	rd, err := NewReader(strings.NewReader(broken+string(gp)), Options{Dialect: insdc.GenBank})
	if err != nil {
		t.Fatal(err)
	}

	_, err = rd.Read()
	if !errors.Is(err, insdc.ErrUnterminatedQuote) {
		t.Fatalf("err = %v, want unterminated quote", err)
	}
	if ok, err := rd.Resync(); !ok || err != nil {
		t.Fatalf("Resync = %v, %v", ok, err)
	}
	rec, err := rd.Read()
	if err != nil {
		t.Fatalf("Read after Resync: %v", err)
	}
	if rec.Locus != "AAD51968" {
		t.Fatalf("locus = %q", rec.Locus)
	}
	if _, err := rd.Read(); err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestCleanQualifier(t *testing.T) {
	cases := []struct {
		in   insdc.Qualifier
		want Qualifier
	}{
		{insdc.Qualifier{Name: "pseudo"}, Qualifier{Name: "pseudo", Flag: true}},
		{insdc.Qualifier{Name: "note", Value: `""`, HasValue: true}, Qualifier{Name: "note"}},
		{insdc.Qualifier{Name: "note", Value: `"say ""hi"""`, HasValue: true}, Qualifier{Name: "note", Value: `say "hi"`}},
		{insdc.Qualifier{Name: "codon_start", Value: "1", HasValue: true}, Qualifier{Name: "codon_start", Value: "1"}},
		{insdc.Qualifier{Name: "translation", Value: "\"MKV\nLLA\"", HasValue: true}, Qualifier{Name: "translation", Value: "MKVLLA"}},
		{insdc.Qualifier{Name: "note", Value: "\"a\nb\"", HasValue: true}, Qualifier{Name: "note", Value: "a b"}},
	}
	for _, tc := range cases {
		if got := CleanQualifier(tc.in); got != tc.want {
			t.Fatalf("CleanQualifier(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestCleanFeatureLocation(t *testing.T) {
	f := CleanFeature(insdc.Feature{Key: "CDS", Location: "join(1..10, 20..30)"})
	if f.Location != "join(1..10,20..30)" {
		t.Fatalf("location = %q", f.Location)
	}
}

func TestCDS(t *testing.T) {
	rec := readOne(t, "U49845.gb")
	proteins, err := CDS(rec, DefaultCDSTags)
	if err != nil {
		t.Fatalf("CDS: %v", err)
	}
	if len(proteins) != 3 {
		t.Fatalf("proteins = %d, want 3", len(proteins))
	}
	p := proteins[0]
	if p.ID != "AAA98665.1" || p.Name != "<unknown name>" || p.Description != "TCP1-beta" {
		t.Fatalf("protein = %s %s %s", p.ID, p.Name, p.Description)
	}
	if p.Sequence != "SSIYNGISTSGLDLNNGTIADMRQLGIVESYKLKRAVVSSASEAAEVLLRVDNIIRARPRTANRQHM" {
		t.Fatalf("sequence = %q", p.Sequence)
	}
	if strings.Join(p.DBXrefs, ",") != "GI:1293614" || p.Parent != "U49845.1" {
		t.Fatalf("dbxrefs = %q parent = %q", p.DBXrefs, p.Parent)
	}
	if p.Annotations["codon_start"] != "3" {
		t.Fatalf("annotations = %v", p.Annotations)
	}
	if proteins[2].Location != "complement(3300..4037)" {
		t.Fatalf("location = %q", proteins[2].Location)
	}

	rec.Features[1].Qualifiers = append(rec.Features[1].Qualifiers, Qualifier{Name: "translation", Value: "M"})
	if _, err := CDS(rec, DefaultCDSTags); !errors.Is(err, ErrMultipleTranslations) {
		t.Fatalf("err = %v, want ErrMultipleTranslations", err)
	}
}

func TestBuilderCallback(t *testing.T) {
	var loci []string
	b := NewBuilder(func(r *Record) error {
		loci = append(loci, r.Locus)
		return nil
	})
	sc, err := insdc.NewScanner(openTestdata(t, "AAD51968.gp"), insdc.GenBank, insdc.Options{SkipFeatures: true})
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	for {
		ok, err := sc.Next(b)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
	}
	if strings.Join(loci, ",") != "AAD51968" || b.Take() != nil {
		t.Fatalf("loci = %q", loci)
	}
}
