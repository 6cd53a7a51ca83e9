package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Doomsbay/InsdcKit/insdckit/insdc"
)

type validateConfig struct {
	ReportPath   string
	SkipFeatures bool
	MaxProblems  int
	Strict       bool
}

type validateProblem struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Section string `json:"section"`
	Detail  string `json:"detail,omitempty"`
	Feature string `json:"feature,omitempty"`
	Text    string `json:"text,omitempty"`
}

type validateStats struct {
	Files    int               `json:"files"`
	Records  int               `json:"records"`
	Invalid  int               `json:"invalid"`
	Warnings int               `json:"warnings"`
	Proteins int               `json:"proteins"`
	Features int               `json:"features"`
	ByKind   map[string]int    `json:"by_kind,omitempty"`
	Problems []validateProblem `json:"problems,omitempty"`
	Dropped  int               `json:"problems_not_listed,omitempty"`
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	common := addCommonFlags(fs)
	report := fs.String("report", "", "Optional JSON report output path")
	skip := fs.Bool("skip-features", false, "Only check record structure, not feature tables")
	maxProblems := fs.Int("max-problems", 1000, "Problems listed in the report (counts are always complete)")
	strict := fs.Bool("strict", false, "Exit non-zero when any record is invalid")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}
	if fs.NArg() == 0 {
		fatalf("at least one input file is required")
	}
	if *maxProblems < 0 {
		fatalf("max-problems must be >= 0")
	}
	s, err := common.setup(fs)
	if err != nil {
		fatalf("setup failed: %v", err)
	}
	defer s.closeLog()

	cfg := validateConfig{
		ReportPath:   *report,
		SkipFeatures: *skip,
		MaxProblems:  *maxProblems,
		Strict:       *strict,
	}
	stats, err := validateFiles(context.Background(), s, fs.Args(), cfg)
	if err != nil {
		fatalf("validate failed: %v", err)
	}
	if cfg.Strict && stats.Invalid > 0 {
		s.closeLog()
		os.Exit(2)
	}
}

func validateFiles(ctx context.Context, s *session, paths []string, cfg validateConfig) (validateStats, error) {
	stats := validateStats{Files: len(paths), ByKind: make(map[string]int)}
	opts := scanOptions{skipFeatures: cfg.SkipFeatures, tolerant: true, description: "validate"}
	err := s.scanFiles(ctx, paths, opts, func(it scanItem) error {
		if it.err != nil {
			stats.Invalid++
			kind := kindName(it.err.Kind)
			stats.ByKind[kind]++
			logger.Warn("invalid record", "file", it.path, "line", it.err.Line, "kind", kind, "detail", it.err.Detail)
			if len(stats.Problems) < cfg.MaxProblems {
				stats.Problems = append(stats.Problems, validateProblem{
					File:    it.path,
					Line:    it.err.Line,
					Kind:    kind,
					Section: it.err.State.String(),
					Detail:  it.err.Detail,
					Feature: it.err.Feature,
					Text:    it.err.Text,
				})
			} else {
				stats.Dropped++
			}
			return nil
		}
		stats.Records++
		stats.Warnings += len(it.rec.Warnings)
		stats.Features += len(it.rec.Features)
		if it.rec.IsProtein() {
			stats.Proteins++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	if cfg.ReportPath != "" {
		if err := writeValidateReport(cfg.ReportPath, stats); err != nil {
			return stats, err
		}
	}
	logf("validate: files=%d records=%d invalid=%d warnings=%d features=%d",
		stats.Files, stats.Records, stats.Invalid, stats.Warnings, stats.Features)
	return stats, nil
}

var kindNames = []struct {
	err  error
	name string
}{
	{insdc.ErrUnexpectedEOF, "unexpected_eof"},
	{insdc.ErrMalformedRecordStart, "malformed_record_start"},
	{insdc.ErrMalformedLocusLine, "malformed_locus_line"},
	{insdc.ErrMissingLength, "missing_length"},
	{insdc.ErrOrphanedContinuation, "orphaned_continuation"},
	{insdc.ErrUnterminatedQuote, "unterminated_quote"},
	{insdc.ErrPrematureTerminator, "premature_terminator"},
	{insdc.ErrMalformedFeature, "malformed_feature"},
	{insdc.ErrMalformedHeader, "malformed_header"},
	{insdc.ErrMalformedFooter, "malformed_footer"},
	{insdc.ErrMalformedSequence, "malformed_sequence"},
}

func kindName(kind error) string {
	for _, k := range kindNames {
		if errors.Is(kind, k.err) {
			return k.name
		}
	}
	return "other"
}

func writeValidateReport(path string, stats validateStats) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
