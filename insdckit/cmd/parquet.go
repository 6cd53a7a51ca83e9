package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

const parquetBatchRows = 64 << 10

var featureSchema = arrow.NewSchema([]arrow.Field{
	{Name: "source", Type: arrow.BinaryTypes.String},
	{Name: "record_id", Type: arrow.BinaryTypes.String},
	{Name: "feature_index", Type: arrow.PrimitiveTypes.Int32},
	{Name: "key", Type: arrow.BinaryTypes.String},
	{Name: "location", Type: arrow.BinaryTypes.String},
	{Name: "qualifier_index", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	{Name: "qualifier", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "value", Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)

// parquetSink batches feature rows into Arrow records and writes them as
// Snappy-compressed Parquet.
type parquetSink struct {
	file *os.File
	fw   *pqarrow.FileWriter
	b    *array.RecordBuilder

	source, recordID, key, location, qualifier, value *array.StringBuilder
	featureIndex, qualifierIndex                      *array.Int32Builder
	rows                                              int
}

func newParquetSink(path string) (*parquetSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	fw, err := pqarrow.NewFileWriter(featureSchema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	b := array.NewRecordBuilder(memory.NewGoAllocator(), featureSchema)
	return &parquetSink{
		file:           f,
		fw:             fw,
		b:              b,
		source:         b.Field(0).(*array.StringBuilder),
		recordID:       b.Field(1).(*array.StringBuilder),
		featureIndex:   b.Field(2).(*array.Int32Builder),
		key:            b.Field(3).(*array.StringBuilder),
		location:       b.Field(4).(*array.StringBuilder),
		qualifierIndex: b.Field(5).(*array.Int32Builder),
		qualifier:      b.Field(6).(*array.StringBuilder),
		value:          b.Field(7).(*array.StringBuilder),
	}, nil
}

func (p *parquetSink) write(row featureRow) error {
	p.source.Append(row.Source)
	p.recordID.Append(row.RecordID)
	p.featureIndex.Append(int32(row.FeatureIndex))
	p.key.Append(row.Key)
	p.location.Append(row.Location)
	if row.QualifierIndex < 0 {
		p.qualifierIndex.AppendNull()
		p.qualifier.AppendNull()
		p.value.AppendNull()
	} else {
		p.qualifierIndex.Append(int32(row.QualifierIndex))
		p.qualifier.Append(row.Qualifier)
		if row.HasValue {
			p.value.Append(row.Value)
		} else {
			p.value.AppendNull()
		}
	}
	p.rows++
	if p.rows >= parquetBatchRows {
		return p.flush()
	}
	return nil
}

func (p *parquetSink) flush() error {
	if p.rows == 0 {
		return nil
	}
	rec := p.b.NewRecord()
	defer rec.Release()
	p.rows = 0
	if err := p.fw.Write(rec); err != nil {
		return fmt.Errorf("write parquet batch: %w", err)
	}
	return nil
}

func (p *parquetSink) Close() error {
	defer p.b.Release()
	if err := p.flush(); err != nil {
		_ = p.fw.Close()
		_ = p.file.Close()
		return err
	}
	if err := p.fw.Close(); err != nil {
		_ = p.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	// The writer closes its sink; a second close only reports that.
	_ = p.file.Close()
	return nil
}
