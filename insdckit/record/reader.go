package record

import (
	"bufio"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Doomsbay/InsdcKit/insdckit/insdc"
)

const readerBufferSize = 1 << 20

// Options configure a Reader.
type Options struct {
	// Dialect of the input. Nil sniffs it from the first non-blank line.
	Dialect      insdc.Dialect
	SkipFeatures bool
	Logger       *log.Logger
	Debug        int
}

// Reader pulls whole records from a GenBank or EMBL stream.
type Reader struct {
	sc *insdc.Scanner
	b  *Builder
}

// NewReader returns a Reader for r. It fails only when the dialect has to
// be sniffed and cannot be.
func NewReader(r io.Reader, opts Options) (*Reader, error) {
	br := bufio.NewReaderSize(r, readerBufferSize)
	d := opts.Dialect
	if d == nil {
		var err error
		if d, err = insdc.Sniff(br); err != nil {
			return nil, err
		}
	}
	sc, err := insdc.NewScanner(br, d, insdc.Options{
		Logger:       opts.Logger,
		Debug:        opts.Debug,
		SkipFeatures: opts.SkipFeatures,
	})
	if err != nil {
		return nil, err
	}
	return &Reader{sc: sc, b: NewBuilder(nil)}, nil
}

// Dialect returns the dialect being read.
func (r *Reader) Dialect() insdc.Dialect {
	return r.sc.Dialect()
}

// Read returns the next record, or io.EOF after the last one. A
// *insdc.SyntaxError leaves the reader inside the broken record; call Resync
// to continue with the next one.
func (r *Reader) Read() (*Record, error) {
	ok, err := r.sc.Next(r.b)
	if err != nil {
		r.b.Reset()
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}
	return r.b.Take(), nil
}

// Resync skips to the next record start. It returns false at end of input.
func (r *Reader) Resync() (bool, error) {
	return r.sc.Resync()
}

// Line returns the current input line number.
func (r *Reader) Line() int {
	return r.sc.Line()
}

// ReadAll reads every record of r.
func ReadAll(r io.Reader, opts Options) ([]*Record, error) {
	rd, err := NewReader(r, opts)
	if err != nil {
		return nil, err
	}
	var out []*Record
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
