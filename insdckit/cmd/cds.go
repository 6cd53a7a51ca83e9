package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/Doomsbay/InsdcKit/insdckit/record"
)

type cdsConfig struct {
	OutputPath string
	Tags       [3]string
	Width      int
	KeepEmpty  bool
}

func runCDS(args []string) {
	fs := flag.NewFlagSet("cds", flag.ExitOnError)
	common := addCommonFlags(fs)
	output := fs.String("output", "-", "Output protein FASTA path (- for stdout, .gz compresses)")
	idTag := fs.String("id-tag", record.DefaultCDSTags[0], "Qualifier used as the protein ID")
	nameTag := fs.String("name-tag", record.DefaultCDSTags[1], "Qualifier used as the protein name")
	descTag := fs.String("desc-tag", record.DefaultCDSTags[2], "Qualifier used as the protein description")
	width := fs.Int("width", 60, "Residues per line")
	keepEmpty := fs.Bool("keep-empty", false, "Also write CDS features without a /translation")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}
	if fs.NArg() == 0 {
		fatalf("at least one input file is required")
	}
	if *width < 1 {
		fatalf("width must be >= 1")
	}
	s, err := common.setup(fs)
	if err != nil {
		fatalf("setup failed: %v", err)
	}
	defer s.closeLog()

	cfg := cdsConfig{
		OutputPath: *output,
		Tags:       [3]string{*idTag, *nameTag, *descTag},
		Width:      *width,
		KeepEmpty:  *keepEmpty,
	}
	if err := writeCDS(context.Background(), s, fs.Args(), cfg); err != nil {
		fatalf("cds failed: %v", err)
	}
}

func writeCDS(ctx context.Context, s *session, paths []string, cfg cdsConfig) error {
	out, err := openOutput(cfg.OutputPath, s.workers)
	if err != nil {
		return err
	}
	w := fasta.NewWriter(out, cfg.Width)

	var records, proteins, empty int
	err = s.forEachRecord(ctx, paths, scanOptions{description: "cds"}, func(_ string, rec *record.Record) error {
		records++
		prots, err := record.CDS(rec, cfg.Tags)
		if err != nil {
			return fmt.Errorf("%s: %w", rec.ID(), err)
		}
		for _, p := range prots {
			if p.Sequence == "" && !cfg.KeepEmpty {
				empty++
				continue
			}
			seq := linear.NewSeq(p.ID, alphabet.BytesToLetters([]byte(p.Sequence)), alphabet.Protein)
			seq.Desc = p.Name + " " + p.Description
			if _, err := w.Write(seq); err != nil {
				return fmt.Errorf("write %s: %w", p.ID, err)
			}
			proteins++
		}
		return nil
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logf("cds: records=%d proteins=%d no-translation=%d", records, proteins, empty)
	return nil
}
