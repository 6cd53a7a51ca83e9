package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Doomsbay/InsdcKit/insdckit/record"
	"github.com/Doomsbay/InsdcKit/insdckit/store"
)

type loadConfig struct {
	DBPath    string
	Namespace string
	Replace   bool
	BatchSize int
}

func runLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	common := addCommonFlags(fs)
	dbPath := fs.String("db", "insdckit.sqlite", "SQLite database path")
	namespace := fs.String("namespace", "default", "Sub-database the records are loaded into")
	replace := fs.Bool("replace", false, "Replace records already loaded with the same accession and version")
	batch := fs.Int("batch", 500, "Records per transaction")
	list := fs.Bool("list", false, "List the loaded entries of -namespace as JSON lines instead of loading")
	get := fs.String("get", "", "Print the record with this accession, version or name as JSON instead of loading")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}
	if *batch < 1 {
		fatalf("batch must be >= 1")
	}
	s, err := common.setup(fs)
	if err != nil {
		fatalf("setup failed: %v", err)
	}
	defer s.closeLog()

	cfg := loadConfig{
		DBPath:    *dbPath,
		Namespace: *namespace,
		Replace:   *replace,
		BatchSize: *batch,
	}
	ctx := context.Background()
	switch {
	case *list:
		err = listEntries(ctx, cfg, os.Stdout)
	case *get != "":
		err = getEntry(ctx, cfg, *get, os.Stdout)
	default:
		if fs.NArg() == 0 {
			fatalf("at least one input file is required")
		}
		err = loadRecords(ctx, s, fs.Args(), cfg)
	}
	if err != nil {
		fatalf("load failed: %v", err)
	}
}

func loadRecords(ctx context.Context, s *session, paths []string, cfg loadConfig) error {
	st, err := store.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	opts := store.LoadOptions{Replace: cfg.Replace}
	pending := make([]*record.Record, 0, cfg.BatchSize)
	var loaded int
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := st.Load(ctx, cfg.Namespace, pending, opts)
		if err != nil {
			return err
		}
		loaded += n
		pending = pending[:0]
		return nil
	}
	err = s.forEachRecord(ctx, paths, scanOptions{description: "load"}, func(_ string, rec *record.Record) error {
		pending = append(pending, rec)
		if len(pending) >= cfg.BatchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return err
	}
	logf("load: records=%d namespace=%s -> %s", loaded, cfg.Namespace, cfg.DBPath)
	return nil
}

func listEntries(ctx context.Context, cfg loadConfig, w io.Writer) error {
	st, err := store.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()
	entries, err := st.Entries(ctx, cfg.Namespace)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
	}
	return nil
}

func getEntry(ctx context.Context, cfg loadConfig, key string, w io.Writer) error {
	st, err := store.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()
	rec, err := st.Lookup(ctx, cfg.Namespace, key)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
