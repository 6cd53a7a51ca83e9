package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Doomsbay/InsdcKit/insdckit/config"
	"github.com/Doomsbay/InsdcKit/insdckit/entrez"
)

type fetchConfig struct {
	OutputPath string
	DB         string
	RetType    string
	BatchSize  int
	Validate   bool
	Force      bool
}

func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	common := addCommonFlags(fs)
	output := fs.String("output", "", "Output flat file path (.gz compresses)")
	idsFile := fs.String("ids", "", "File with one accession per line (in addition to positional ids)")
	db := fs.String("db", "nuccore", "Entrez database: nuccore or protein")
	retType := fs.String("rettype", "gbwithparts", "Entrez rettype: gb, gbwithparts, gp or embl")
	batch := fs.Int("batch", 0, "Ids per request (0 uses config)")
	validate := fs.Bool("validate", false, "Validate the downloaded file afterwards")
	force := fs.Bool("force", false, "Overwrite an existing output")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}
	if *output == "" {
		fatalf("output is required")
	}
	if fileExists(*output) && !*force {
		logf("Skip fetch: %s exists (use -force to rebuild)", *output)
		return
	}
	ids := fs.Args()
	if *idsFile != "" {
		more, err := readIDs(*idsFile)
		if err != nil {
			fatalf("read ids failed: %v", err)
		}
		ids = append(ids, more...)
	}
	if len(ids) == 0 {
		fatalf("no ids given")
	}
	s, err := common.setup(fs)
	if err != nil {
		fatalf("setup failed: %v", err)
	}
	defer s.closeLog()

	cfg := fetchConfig{
		OutputPath: *output,
		DB:         *db,
		RetType:    *retType,
		BatchSize:  *batch,
		Validate:   *validate,
		Force:      *force,
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = s.cfg.NCBI.BatchSize
	}
	client := newEntrezClient(s.cfg.NCBI)
	ctx := context.Background()
	if err := fetchRecords(ctx, s, client, ids, cfg); err != nil {
		fatalf("fetch failed: %v", err)
	}
	if cfg.Validate {
		if _, err := validateFiles(ctx, s, []string{cfg.OutputPath}, validateConfig{MaxProblems: 100}); err != nil {
			fatalf("validate failed: %v", err)
		}
	}
}

func newEntrezClient(cfg config.NCBI) *entrez.Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	return &entrez.Client{
		HTTP:       &http.Client{Timeout: timeout},
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Tool:       cfg.Tool,
		Email:      cfg.Email,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	}
}

func fetchRecords(ctx context.Context, s *session, client *entrez.Client, ids []string, cfg fetchConfig) error {
	out, err := createOutput(cfg.OutputPath, s.workers)
	if err != nil {
		return err
	}
	reportEvery := 0
	if s.progress {
		reportEvery = 1
	}
	progress := newProgress(len(ids), reportEvery)

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = entrez.DefaultBatchSize
	}
	var written int64
	for start := 0; start < len(ids) && err == nil; start += batchSize {
		end := min(start+batchSize, len(ids))
		req := entrez.FetchRequest{DB: cfg.DB, IDs: ids[start:end], RetType: cfg.RetType}
		var body io.ReadCloser
		body, err = client.Fetch(ctx, req)
		if err != nil {
			break
		}
		var n int64
		n, err = io.Copy(out, body)
		_ = body.Close()
		written += n
		if err != nil {
			err = fmt.Errorf("copy efetch response: %w", err)
		}
		progress.add(end - start)
	}
	progress.finish()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logf("fetch: ids=%d bytes=%d -> %s", len(ids), written, cfg.OutputPath)
	return nil
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ids: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, strings.Fields(line)[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan ids: %w", err)
	}
	return ids, nil
}
