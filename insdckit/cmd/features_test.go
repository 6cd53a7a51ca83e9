package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v18/parquet/file"
)

func TestExportFeaturesTSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "features.tsv")
	cfg := featuresConfig{OutputPath: out}
	if err := exportFeatures(context.Background(), testSession(), []string{testdata("U49845.gb")}, cfg); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := readLines(t, out)
	if len(lines) != 26 {
		t.Fatalf("expected header and 25 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(featureColumns, "\t") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	want := "U49845.gb\tU49845.1\t0\tsource\t1..5028\t0\torganism\tSaccharomyces cerevisiae"
	if lines[1] != want {
		t.Fatalf("first row = %q, want %q", lines[1], want)
	}
	var found bool
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		if len(fields) != len(featureColumns) {
			t.Fatalf("row has %d fields: %q", len(fields), line)
		}
		if fields[2] == "1" && fields[6] == "translation" {
			found = true
			if fields[7] != "SSIYNGISTSGLDLNNGTIADMRQLGIVESYKLKRAVVSSASEAAEVLLRVDNIIRARPRTANRQHM" {
				t.Fatalf("translation not joined: %q", fields[7])
			}
		}
	}
	if !found {
		t.Fatalf("translation row missing")
	}
}

func TestExportFeaturesKeysAndRaw(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cds.tsv.gz")
	cfg := featuresConfig{OutputPath: out, Keys: map[string]bool{"CDS": true}, Raw: true}
	if err := exportFeatures(context.Background(), testSession(), []string{testdata("U49845.gb")}, cfg); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := readLines(t, out)
	if len(lines) != 20 {
		t.Fatalf("expected header and 19 CDS rows, got %d lines", len(lines))
	}
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		if fields[3] != "CDS" {
			t.Fatalf("unexpected key in %q", line)
		}
		if fields[6] == "product" && !strings.HasPrefix(fields[7], `"`) {
			t.Fatalf("raw value lost its quotes: %q", fields[7])
		}
	}
}

func TestExportFeaturesParquet(t *testing.T) {
	out := filepath.Join(t.TempDir(), "features.parquet")
	paths := []string{testdata("U49845.gb"), testdata("X56734.embl")}
	if err := exportFeatures(context.Background(), testSession(), paths, featuresConfig{OutputPath: out}); err != nil {
		t.Fatalf("export: %v", err)
	}
	rdr, err := file.OpenParquetFile(out, false)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer func() {
		_ = rdr.Close()
	}()
	// U49845 has 25 qualifier rows, X56734 has 16.
	if got := rdr.NumRows(); got != 41 {
		t.Fatalf("rows = %d, want 41", got)
	}
	if got := rdr.MetaData().Schema.NumColumns(); got != len(featureColumns) {
		t.Fatalf("columns = %d, want %d", got, len(featureColumns))
	}
}

func TestFeatureFormat(t *testing.T) {
	cases := []struct {
		cfg  featuresConfig
		want string
		ok   bool
	}{
		{featuresConfig{OutputPath: "out.parquet"}, "parquet", true},
		{featuresConfig{OutputPath: "out.tsv.gz"}, "tsv", true},
		{featuresConfig{OutputPath: "out.bin", Format: "PARQUET"}, "parquet", true},
		{featuresConfig{OutputPath: "out.tsv", Format: "csv"}, "", false},
	}
	for _, tc := range cases {
		got, err := featureFormat(tc.cfg)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("featureFormat(%+v) = %q, %v", tc.cfg, got, err)
		}
	}
}
