package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Doomsbay/InsdcKit/insdckit/insdc"
	"github.com/Doomsbay/InsdcKit/insdckit/record"
)

// scanItem is one record, or one syntax error in tolerant mode.
type scanItem struct {
	path string
	rec  *record.Record
	err  *insdc.SyntaxError
}

type scanOptions struct {
	skipFeatures bool
	// tolerant reports syntax errors as items and resynchronises on the next
	// record instead of failing the file.
	tolerant bool
	// description labels the progress bar; empty disables it.
	description string
}

// scanFiles reads every record of paths. Up to s.workers files are scanned
// at once, one Scanner each. fn is called from a single goroutine; records of
// one file arrive in input order.
func (s *session) scanFiles(ctx context.Context, paths []string, opts scanOptions, fn func(scanItem) error) error {
	var read atomic.Int64
	var bar *byteProgress
	if s.progress && opts.description != "" {
		bar = newByteProgress(totalSize(paths), opts.description)
	}

	items := make(chan scanItem, 64)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(items)
		w, wctx := errgroup.WithContext(gctx)
		w.SetLimit(max(s.workers, 1))
		for _, path := range paths {
			w.Go(func() error {
				return s.scanFile(wctx, path, opts, &read, items)
			})
		}
		return w.Wait()
	})
	g.Go(func() error {
		for it := range items {
			if err := fn(it); err != nil {
				return err
			}
			bar.set(read.Load())
		}
		return nil
	})
	err := g.Wait()
	bar.set(read.Load())
	bar.finish()
	return err
}

func (s *session) scanFile(ctx context.Context, path string, opts scanOptions, read *atomic.Int64, out chan<- scanItem) error {
	in, err := openInputWithCounter(path, read)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	rd, err := record.NewReader(in, record.Options{
		Dialect:      s.dialect,
		SkipFeatures: opts.skipFeatures,
		Logger:       logger.With("file", path),
		Debug:        s.debug,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("scanning", "file", path, "dialect", rd.Dialect().Name())

	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		it := scanItem{path: path, rec: rec}
		if err != nil {
			var serr *insdc.SyntaxError
			if !opts.tolerant || !errors.As(err, &serr) {
				return fmt.Errorf("%s: %w", path, err)
			}
			it = scanItem{path: path, err: serr}
		}
		select {
		case out <- it:
		case <-ctx.Done():
			return ctx.Err()
		}
		if it.err == nil {
			continue
		}
		ok, err := rd.Resync()
		if err != nil {
			return fmt.Errorf("%s: resync: %w", path, err)
		}
		if !ok {
			return nil
		}
	}
}

// forEachRecord is scanFiles for callers that only want records.
func (s *session) forEachRecord(ctx context.Context, paths []string, opts scanOptions, fn func(path string, rec *record.Record) error) error {
	opts.tolerant = false
	return s.scanFiles(ctx, paths, opts, func(it scanItem) error {
		return fn(it.path, it.rec)
	})
}
