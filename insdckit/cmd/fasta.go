package cmd

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/Doomsbay/InsdcKit/insdckit/record"
)

type fastaConfig struct {
	OutputPath string
	OutDir     string
	SplitBy    string
	Width      int
	MinLen     int
	Molecule   string
	Upper      bool
	Force      bool
}

type fastaStats struct {
	Records  int
	Written  int
	NoSeq    int
	TooShort int
	Molecule int
}

func runFasta(args []string) {
	fs := flag.NewFlagSet("fasta", flag.ExitOnError)
	common := addCommonFlags(fs)
	output := fs.String("output", "-", "Output FASTA path (- for stdout, .gz compresses)")
	outDir := fs.String("outdir", "fasta", "Output directory when splitting")
	splitBy := fs.String("split-by", "", "Write one FASTA.gz per value: division or dialect (empty disables)")
	width := fs.Int("width", 60, "Residues per line (0 writes one line)")
	minLen := fs.Int("min-length", 0, "Minimum sequence length (0 disables)")
	molecule := fs.String("molecule", "all", "Records to write: all, nucleotide or protein")
	upper := fs.Bool("upper", false, "Upper-case the sequences")
	force := fs.Bool("force", false, "Overwrite existing outputs")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}
	if fs.NArg() == 0 {
		fatalf("at least one input file is required")
	}
	if *width < 0 || *minLen < 0 {
		fatalf("width and min-length must be >= 0")
	}
	switch *molecule {
	case "all", "nucleotide", "protein":
	default:
		fatalf("molecule must be all, nucleotide or protein")
	}
	switch *splitBy {
	case "", "division", "dialect":
	default:
		fatalf("split-by must be division or dialect")
	}
	if *splitBy == "" && *output != "-" && fileExists(*output) && !*force {
		logf("Skip fasta: %s exists (use -force to rebuild)", *output)
		return
	}
	s, err := common.setup(fs)
	if err != nil {
		fatalf("setup failed: %v", err)
	}
	defer s.closeLog()

	cfg := fastaConfig{
		OutputPath: *output,
		OutDir:     *outDir,
		SplitBy:    *splitBy,
		Width:      *width,
		MinLen:     *minLen,
		Molecule:   *molecule,
		Upper:      *upper,
		Force:      *force,
	}
	if err := writeFasta(context.Background(), s, fs.Args(), cfg); err != nil {
		fatalf("fasta failed: %v", err)
	}
}

// fastaOutputs hands out one FASTA writer per split key.
type fastaOutputs struct {
	dir     string
	workers int
	width   int
	single  *output
	outs    map[string]*output
	writers map[string]*fasta.Writer
}

func (o *fastaOutputs) get(key string) (*fasta.Writer, error) {
	if w, ok := o.writers[key]; ok {
		return w, nil
	}
	out := o.single
	if out == nil {
		var err error
		out, err = createOutput(filepath.Join(o.dir, sanitizeName(key)+".fasta.gz"), o.workers)
		if err != nil {
			return nil, err
		}
		o.outs[key] = out
	}
	w := fasta.NewWriter(out, o.width)
	o.writers[key] = w
	return w, nil
}

func (o *fastaOutputs) Close() error {
	var first error
	if o.single != nil {
		first = o.single.Close()
	}
	for key, out := range o.outs {
		if err := out.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", key, err)
		}
	}
	return first
}

func writeFasta(ctx context.Context, s *session, paths []string, cfg fastaConfig) error {
	outs := &fastaOutputs{
		dir:     cfg.OutDir,
		workers: s.workers,
		width:   max(cfg.Width, 1),
		outs:    make(map[string]*output),
		writers: make(map[string]*fasta.Writer),
	}
	if cfg.SplitBy == "" {
		single, err := openOutput(cfg.OutputPath, s.workers)
		if err != nil {
			return err
		}
		outs.single = single
	}

	var stats fastaStats
	err := s.forEachRecord(ctx, paths, scanOptions{skipFeatures: true, description: "fasta"}, func(_ string, rec *record.Record) error {
		stats.Records++
		if rec.Sequence == "" {
			stats.NoSeq++
			return nil
		}
		protein := rec.IsProtein()
		if (cfg.Molecule == "nucleotide" && protein) || (cfg.Molecule == "protein" && !protein) {
			stats.Molecule++
			return nil
		}
		if cfg.MinLen > 0 && len(rec.Sequence) < cfg.MinLen {
			stats.TooShort++
			return nil
		}
		key := ""
		switch cfg.SplitBy {
		case "division":
			key = rec.Division
		case "dialect":
			key = rec.Dialect
		}
		w, err := outs.get(key)
		if err != nil {
			return err
		}
		if cfg.Width == 0 {
			w.Width = len(rec.Sequence)
		}
		if _, err := w.Write(recordSeq(rec, protein, cfg.Upper)); err != nil {
			return fmt.Errorf("write %s: %w", rec.ID(), err)
		}
		stats.Written++
		return nil
	})
	if cerr := outs.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logf("fasta: records=%d written=%d drop no-seq=%d short=%d molecule=%d",
		stats.Records, stats.Written, stats.NoSeq, stats.TooShort, stats.Molecule)
	return nil
}

func recordSeq(rec *record.Record, protein, upper bool) *linear.Seq {
	residues := rec.Sequence
	if upper {
		residues = strings.ToUpper(residues)
	}
	var alpha alphabet.Alphabet = alphabet.DNAredundant
	if protein {
		alpha = alphabet.Protein
	}
	s := linear.NewSeq(rec.ID(), alphabet.BytesToLetters([]byte(residues)), alpha)
	s.Desc = rec.Definition
	return s
}
