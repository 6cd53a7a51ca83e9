package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/Doomsbay/InsdcKit/insdckit/record"
)

type scanConfig struct {
	OutputPath   string
	JSON         bool
	SkipFeatures bool
}

func runScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	common := addCommonFlags(fs)
	output := fs.String("output", "-", "Output path (- for stdout, .gz compresses)")
	asJSON := fs.Bool("json", false, "Write one JSON record per line instead of a summary table")
	skip := fs.Bool("skip-features", false, "Do not tokenise feature tables")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}
	if fs.NArg() == 0 {
		fatalf("at least one input file is required")
	}
	s, err := common.setup(fs)
	if err != nil {
		fatalf("setup failed: %v", err)
	}
	defer s.closeLog()

	cfg := scanConfig{
		OutputPath:   *output,
		JSON:         *asJSON,
		SkipFeatures: *skip,
	}
	if err := scanRecords(context.Background(), s, fs.Args(), cfg); err != nil {
		fatalf("scan failed: %v", err)
	}
}

var scanColumns = []string{
	"file", "id", "dialect", "locus", "size", "residue_type", "topology",
	"division", "date", "features", "sequence_length", "warnings",
}

func scanRecords(ctx context.Context, s *session, paths []string, cfg scanConfig) error {
	out, err := openOutput(cfg.OutputPath, s.workers)
	if err != nil {
		return err
	}

	var write func(path string, rec *record.Record) error
	if cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		write = func(_ string, rec *record.Record) error {
			return enc.Encode(rec)
		}
	} else {
		if _, err := out.WriteString(strings.Join(scanColumns, "\t") + "\n"); err != nil {
			_ = out.Close()
			return fmt.Errorf("write header: %w", err)
		}
		write = func(path string, rec *record.Record) error {
			_, err := out.WriteString(summaryLine(path, rec))
			return err
		}
	}

	var records, warnings int
	err = s.forEachRecord(ctx, paths, scanOptions{skipFeatures: cfg.SkipFeatures, description: "scan"}, func(path string, rec *record.Record) error {
		records++
		warnings += len(rec.Warnings)
		if err := write(path, rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		return nil
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logf("scan: files=%d records=%d warnings=%d", len(paths), records, warnings)
	return nil
}

func summaryLine(path string, rec *record.Record) string {
	fields := []string{
		path,
		rec.ID(),
		rec.Dialect,
		rec.Locus,
		rec.Size,
		rec.ResidueType,
		rec.Topology,
		rec.Division,
		rec.Date,
		strconv.Itoa(len(rec.Features)),
		strconv.Itoa(len(rec.Sequence)),
		strconv.Itoa(len(rec.Warnings)),
	}
	return strings.Join(fields, "\t") + "\n"
}
