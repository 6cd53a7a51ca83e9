package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/klauspost/pgzip"
)

const writerBufferSize = 1 << 20

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func totalSize(paths []string) int64 {
	var n int64
	for _, p := range paths {
		n += fileSize(p)
	}
	return n
}

// countingReader adds the bytes read to a shared counter.
type countingReader struct {
	r io.Reader
	n *atomic.Int64
}

func (c countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

type readCloser struct {
	reader io.Reader
	close  func() error
}

func (r readCloser) Read(p []byte) (int, error) {
	return r.reader.Read(p)
}

func (r readCloser) Close() error {
	return r.close()
}

func openInput(path string) (io.ReadCloser, error) {
	return openInputWithCounter(path, nil)
}

// openInputWithCounter opens path, decompressing .gz files. Bytes read from
// disk are added to counter when it is not nil, so progress can be measured
// against fileSize.
func openInputWithCounter(path string, counter *atomic.Int64) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var src io.Reader = f
	if counter != nil {
		src = countingReader{r: f, n: counter}
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(src)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		return readCloser{
			reader: gz,
			close: func() error {
				_ = gz.Close()
				return f.Close()
			},
		}, nil
	}
	return readCloser{reader: src, close: f.Close}, nil
}

// output is a buffered file, gzip-compressed when its name ends in .gz.
type output struct {
	file *os.File
	buf  *bufio.Writer
	gz   *pgzip.Writer
}

func createOutput(path string, workers int) (*output, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	out := &output{file: f}
	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewWriterLevel(f, pgzip.DefaultCompression)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create gzip writer: %w", err)
		}
		if workers < 1 {
			workers = 1
		}
		if err := gz.SetConcurrency(1<<20, workers); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("set gzip concurrency: %w", err)
		}
		out.gz = gz
		w = gz
	}
	out.buf = bufio.NewWriterSize(w, writerBufferSize)
	return out, nil
}

// stdoutOutput writes to standard output; "-" selects it as a path.
func stdoutOutput() *output {
	return &output{buf: bufio.NewWriterSize(os.Stdout, writerBufferSize)}
}

func openOutput(path string, workers int) (*output, error) {
	if path == "" || path == "-" {
		return stdoutOutput(), nil
	}
	return createOutput(path, workers)
}

func (o *output) Write(p []byte) (int, error) {
	return o.buf.Write(p)
}

func (o *output) WriteString(s string) (int, error) {
	return o.buf.WriteString(s)
}

func (o *output) Close() error {
	if err := o.buf.Flush(); err != nil {
		if o.file != nil {
			_ = o.file.Close()
		}
		return fmt.Errorf("flush: %w", err)
	}
	if o.gz != nil {
		if err := o.gz.Close(); err != nil {
			_ = o.file.Close()
			return fmt.Errorf("close gzip: %w", err)
		}
	}
	if o.file == nil {
		return nil
	}
	return o.file.Close()
}

// sanitizeName maps a value onto a safe file name component.
func sanitizeName(value string) string {
	if value == "" {
		return "unknown"
	}
	b := []byte(value)
	for i, c := range b {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '.' || c == '_' || c == '-' {
			continue
		}
		b[i] = '_'
	}
	return string(b)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fatalf(format string, args ...any) {
	logger.Errorf(format, args...)
	os.Exit(1)
}
