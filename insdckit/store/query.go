package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Doomsbay/InsdcKit/insdckit/record"
)

// Entries lists the records of the named database ordered by accession.
func (s *Store) Entries(ctx context.Context, dbName string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.bioentry_id, e.name, e.accession, e.identifier, e.version, e.division, e.description, q.length
		FROM bioentry e
		JOIN biodatabase d ON d.biodatabase_id = e.biodatabase_id
		JOIN biosequence q ON q.bioentry_id = e.bioentry_id
		WHERE d.name = ?
		ORDER BY e.accession, e.version`, dbName)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Accession, &e.Identifier, &e.Version, &e.Division, &e.Description, &e.Length); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Lookup rebuilds a record from the named database. key matches the
// accession, the versioned identifier or the locus name; the highest version
// wins. Raw features are not stored, so Feature.Raw is left empty.
func (s *Store) Lookup(ctx context.Context, dbName, key string) (*record.Record, error) {
	var (
		id  int64
		rec record.Record
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT e.bioentry_id, e.name, e.identifier, e.division, e.description, e.dialect, q.length, q.seq
		FROM bioentry e
		JOIN biodatabase d ON d.biodatabase_id = e.biodatabase_id
		JOIN biosequence q ON q.bioentry_id = e.bioentry_id
		WHERE d.name = ? AND (e.accession = ? OR e.identifier = ? OR e.name = ?)
		ORDER BY e.version DESC
		LIMIT 1`, dbName, key, key, key).
		Scan(&id, &rec.Locus, &rec.Version, &rec.Division, &rec.Definition, &rec.Dialect, &rec.Size, &rec.Sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s in %s: %w", key, dbName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", key, err)
	}

	if err := s.readQualifiers(ctx, id, &rec); err != nil {
		return nil, err
	}
	if err := s.readReferences(ctx, id, &rec); err != nil {
		return nil, err
	}
	if err := s.readFeatures(ctx, id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) readQualifiers(ctx context.Context, id int64, rec *record.Record) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term, value FROM bioentry_qualifier_value WHERE bioentry_id = ? ORDER BY term, rank`, id)
	if err != nil {
		return fmt.Errorf("read qualifiers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	single := map[string]*string{
		"residue_type":    &rec.ResidueType,
		"topology":        &rec.Topology,
		"data_class":      &rec.DataClass,
		"date":            &rec.Date,
		"gi":              &rec.GI,
		"nid":             &rec.NID,
		"pid":             &rec.PID,
		"db_source":       &rec.DBSource,
		"segment":         &rec.Segment,
		"source":          &rec.Source,
		"organism":        &rec.Organism,
		"comment":         &rec.Comment,
		"base_count":      &rec.BaseCount,
		"origin_name":     &rec.OriginName,
		"contig_location": &rec.ContigLocation,
	}
	lists := map[string]*[]string{
		"accession": &rec.Accessions,
		"keyword":   &rec.Keywords,
		"taxonomy":  &rec.Taxonomy,
		"dbxref":    &rec.DBXrefs,
		"warning":   &rec.Warnings,
	}
	for rows.Next() {
		var term, value string
		if err := rows.Scan(&term, &value); err != nil {
			return fmt.Errorf("scan qualifier: %w", err)
		}
		if dst, ok := single[term]; ok {
			*dst = value
		} else if dst, ok := lists[term]; ok {
			*dst = append(*dst, value)
		}
	}
	return rows.Err()
}

func (s *Store) readReferences(ctx context.Context, id int64, rec *record.Record) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, bases, authors, consortium, title, journal, medline_id, pubmed_id, remark, xrefs
		FROM reference WHERE bioentry_id = ? ORDER BY rank`, id)
	if err != nil {
		return fmt.Errorf("read references: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			r     record.Reference
			xrefs string
		)
		if err := rows.Scan(&r.Number, &r.Bases, &r.Authors, &r.Consortium, &r.Title, &r.Journal,
			&r.MedlineID, &r.PubMedID, &r.Remark, &xrefs); err != nil {
			return fmt.Errorf("scan reference: %w", err)
		}
		if xrefs != "" {
			r.Xrefs = strings.Split(xrefs, "\n")
		}
		rec.References = append(rec.References, r)
	}
	return rows.Err()
}

func (s *Store) readFeatures(ctx context.Context, id int64, rec *record.Record) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.rank, f.key, f.location, v.name, v.value
		FROM seqfeature f
		LEFT JOIN seqfeature_qualifier_value v ON v.seqfeature_id = f.seqfeature_id
		WHERE f.bioentry_id = ?
		ORDER BY f.rank, v.rank`, id)
	if err != nil {
		return fmt.Errorf("read features: %w", err)
	}
	defer func() { _ = rows.Close() }()

	last := -1
	for rows.Next() {
		var (
			rank          int
			key, location string
			name, value   sql.NullString
		)
		if err := rows.Scan(&rank, &key, &location, &name, &value); err != nil {
			return fmt.Errorf("scan feature: %w", err)
		}
		if rank != last {
			rec.Features = append(rec.Features, record.Feature{Key: key, Location: location})
			last = rank
		}
		if !name.Valid {
			continue
		}
		f := &rec.Features[len(rec.Features)-1]
		f.Qualifiers = append(f.Qualifiers, record.Qualifier{Name: name.String, Value: value.String, Flag: !value.Valid})
	}
	return rows.Err()
}
