package cmd

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Doomsbay/InsdcKit/insdckit/record"
)

type featuresConfig struct {
	OutputPath string
	Format     string
	Keys       map[string]bool
	Raw        bool
	Force      bool
}

// featureRow is one qualifier of one feature. Features without qualifiers
// get a single row with QualifierIndex -1.
type featureRow struct {
	Source         string
	RecordID       string
	FeatureIndex   int
	Key            string
	Location       string
	QualifierIndex int
	Qualifier      string
	Value          string
	HasValue       bool
}

type featureSink interface {
	write(row featureRow) error
	Close() error
}

var featureColumns = []string{
	"source", "record_id", "feature_index", "key", "location",
	"qualifier_index", "qualifier", "value",
}

func runFeatures(args []string) {
	fs := flag.NewFlagSet("features", flag.ExitOnError)
	common := addCommonFlags(fs)
	output := fs.String("output", "", "Output path (.tsv, .tsv.gz or .parquet)")
	format := fs.String("out-format", "", "Output format: tsv or parquet (default from the output extension)")
	keys := fs.String("keys", "", "Comma-separated feature keys to export (empty exports all)")
	raw := fs.Bool("raw", false, "Export qualifier values as scanned, with quotes and line breaks")
	force := fs.Bool("force", false, "Overwrite an existing output")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}
	if *output == "" || fs.NArg() == 0 {
		fatalf("output and at least one input file are required")
	}
	if fileExists(*output) && !*force {
		logf("Skip features: %s exists (use -force to rebuild)", *output)
		return
	}
	s, err := common.setup(fs)
	if err != nil {
		fatalf("setup failed: %v", err)
	}
	defer s.closeLog()

	cfg := featuresConfig{
		OutputPath: *output,
		Format:     *format,
		Raw:        *raw,
		Force:      *force,
	}
	if list := splitList(*keys); len(list) > 0 {
		cfg.Keys = make(map[string]bool, len(list))
		for _, k := range list {
			cfg.Keys[k] = true
		}
	}
	if err := exportFeatures(context.Background(), s, fs.Args(), cfg); err != nil {
		fatalf("features failed: %v", err)
	}
}

func featureFormat(cfg featuresConfig) (string, error) {
	format := strings.ToLower(cfg.Format)
	if format == "" {
		if strings.HasSuffix(cfg.OutputPath, ".parquet") {
			format = "parquet"
		} else {
			format = "tsv"
		}
	}
	if format != "tsv" && format != "parquet" {
		return "", fmt.Errorf("unknown output format %q", cfg.Format)
	}
	return format, nil
}

func exportFeatures(ctx context.Context, s *session, paths []string, cfg featuresConfig) error {
	format, err := featureFormat(cfg)
	if err != nil {
		return err
	}
	var sink featureSink
	if format == "parquet" {
		sink, err = newParquetSink(cfg.OutputPath)
	} else {
		sink, err = newTSVSink(cfg.OutputPath, s.workers)
	}
	if err != nil {
		return err
	}

	var records, rows int
	err = s.forEachRecord(ctx, paths, scanOptions{description: "features"}, func(path string, rec *record.Record) error {
		records++
		n, err := writeFeatureRows(sink, filepath.Base(path), rec, cfg)
		rows += n
		return err
	})
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logf("features: records=%d rows=%d -> %s", records, rows, cfg.OutputPath)
	return nil
}

func writeFeatureRows(sink featureSink, source string, rec *record.Record, cfg featuresConfig) (int, error) {
	var n int
	id := rec.ID()
	for i := range rec.Features {
		f := &rec.Features[i]
		if cfg.Keys != nil && !cfg.Keys[f.Key] {
			continue
		}
		row := featureRow{
			Source:         source,
			RecordID:       id,
			FeatureIndex:   i,
			Key:            f.Key,
			Location:       f.Location,
			QualifierIndex: -1,
		}
		if cfg.Raw {
			row.Location = f.Raw.Location
		}
		count := len(f.Qualifiers)
		if count == 0 {
			if err := sink.write(row); err != nil {
				return n, err
			}
			n++
			continue
		}
		for j := 0; j < count; j++ {
			row.QualifierIndex = j
			if cfg.Raw {
				q := f.Raw.Qualifiers[j]
				row.Qualifier, row.Value, row.HasValue = q.Name, q.Value, q.HasValue
			} else {
				q := f.Qualifiers[j]
				row.Qualifier, row.Value, row.HasValue = q.Name, q.Value, !q.Flag
			}
			if err := sink.write(row); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

type tsvSink struct {
	out *output
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\r", "", "\n", " ")

func newTSVSink(path string, workers int) (*tsvSink, error) {
	out, err := createOutput(path, workers)
	if err != nil {
		return nil, err
	}
	if _, err := out.WriteString(strings.Join(featureColumns, "\t") + "\n"); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &tsvSink{out: out}, nil
}

func (t *tsvSink) write(row featureRow) error {
	qualIndex := ""
	if row.QualifierIndex >= 0 {
		qualIndex = strconv.Itoa(row.QualifierIndex)
	}
	fields := []string{
		row.Source,
		row.RecordID,
		strconv.Itoa(row.FeatureIndex),
		row.Key,
		tsvEscaper.Replace(row.Location),
		qualIndex,
		row.Qualifier,
		tsvEscaper.Replace(row.Value),
	}
	if _, err := t.out.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

func (t *tsvSink) Close() error {
	return t.out.Close()
}
