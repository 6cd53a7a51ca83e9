// Package store keeps parsed records in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/Doomsbay/InsdcKit/insdckit/record"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("record already loaded")
)

// Store is a SQLite-backed record database.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Entry summarizes a loaded record.
type Entry struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Accession   string `json:"accession"`
	Identifier  string `json:"identifier,omitempty"`
	Version     int    `json:"version"`
	Division    string `json:"division,omitempty"`
	Description string `json:"description,omitempty"`
	Length      int    `json:"length"`
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps the pragmas in effect for every statement.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA foreign_keys = ON", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite %s: %w", path, err)
		}
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadOptions control Load.
type LoadOptions struct {
	// Replace deletes an already loaded entry with the same accession and
	// version instead of failing with ErrExists.
	Replace bool
}

// Load stores recs in the named database, creating it if needed. All
// records are written in one transaction.
func (s *Store) Load(ctx context.Context, dbName string, recs []*record.Record, opts LoadOptions) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dbID, err := ensureDatabase(ctx, tx, dbName)
	if err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if err := s.loadRecord(ctx, tx, dbID, rec, opts); err != nil {
			return 0, fmt.Errorf("load record %d (%s): %w", i+1, rec.ID(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("loaded records", "database", dbName, "records", len(recs))
	return len(recs), nil
}

func ensureDatabase(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO biodatabase(name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("create database %s: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT biodatabase_id FROM biodatabase WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("find database %s: %w", name, err)
	}
	return id, nil
}

// versionNumber extracts N from ACCESSION.N.
func versionNumber(version string) int {
	_, n, ok := strings.Cut(version, ".")
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(n)
	if err != nil {
		return 0
	}
	return v
}

func (s *Store) loadRecord(ctx context.Context, tx *sql.Tx, dbID int64, rec *record.Record, opts LoadOptions) error {
	version := versionNumber(rec.Version)
	accession := rec.Accession()

	var existing int64
	err := tx.QueryRowContext(ctx,
		`SELECT bioentry_id FROM bioentry WHERE biodatabase_id = ? AND accession = ? AND version = ?`,
		dbID, accession, version).Scan(&existing)
	switch {
	case err == nil && !opts.Replace:
		return ErrExists
	case err == nil:
		s.logger.Debug("replacing entry", "accession", accession, "version", version)
		if _, err := tx.ExecContext(ctx, `DELETE FROM bioentry WHERE bioentry_id = ?`, existing); err != nil {
			return fmt.Errorf("delete previous entry: %w", err)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check existing entry: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bioentry(biodatabase_id, name, accession, identifier, division, description, version, dialect)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		dbID, rec.Locus, accession, rec.Version, rec.Division, rec.Definition, version, rec.Dialect)
	if err != nil {
		return fmt.Errorf("insert bioentry: %w", err)
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	length, err := strconv.Atoi(rec.Size)
	if err != nil {
		length = len(rec.Sequence)
	}
	alphabet := "dna"
	if rec.IsProtein() {
		alphabet = "protein"
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO biosequence(bioentry_id, length, alphabet, seq) VALUES (?, ?, ?, ?)`,
		entryID, length, alphabet, rec.Sequence); err != nil {
		return fmt.Errorf("insert biosequence: %w", err)
	}

	if err := insertQualifiers(ctx, tx, entryID, rec); err != nil {
		return err
	}
	if err := insertReferences(ctx, tx, entryID, rec.References); err != nil {
		return err
	}
	return insertFeatures(ctx, tx, entryID, rec.Features)
}

// entryTerms maps single-valued record fields to qualifier terms.
func entryTerms(rec *record.Record) []struct{ term, value string } {
	return []struct{ term, value string }{
		{"residue_type", rec.ResidueType},
		{"topology", rec.Topology},
		{"data_class", rec.DataClass},
		{"date", rec.Date},
		{"gi", rec.GI},
		{"nid", rec.NID},
		{"pid", rec.PID},
		{"db_source", rec.DBSource},
		{"segment", rec.Segment},
		{"source", rec.Source},
		{"organism", rec.Organism},
		{"comment", rec.Comment},
		{"base_count", rec.BaseCount},
		{"origin_name", rec.OriginName},
		{"contig_location", rec.ContigLocation},
	}
}

func insertQualifiers(ctx context.Context, tx *sql.Tx, entryID int64, rec *record.Record) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bioentry_qualifier_value(bioentry_id, term, rank, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare qualifiers: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	insert := func(term string, rank int, value string) error {
		if _, err := stmt.ExecContext(ctx, entryID, term, rank, value); err != nil {
			return fmt.Errorf("insert qualifier %s: %w", term, err)
		}
		return nil
	}
	for _, t := range entryTerms(rec) {
		if t.value == "" {
			continue
		}
		if err := insert(t.term, 0, t.value); err != nil {
			return err
		}
	}
	lists := []struct {
		term   string
		values []string
	}{
		{"accession", rec.Accessions},
		{"keyword", rec.Keywords},
		{"taxonomy", rec.Taxonomy},
		{"dbxref", rec.DBXrefs},
		{"warning", rec.Warnings},
	}
	for _, l := range lists {
		for i, v := range l.values {
			if err := insert(l.term, i, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertReferences(ctx context.Context, tx *sql.Tx, entryID int64, refs []record.Reference) error {
	for i, r := range refs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reference(bioentry_id, rank, number, bases, authors, consortium, title, journal, medline_id, pubmed_id, remark, xrefs)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entryID, i, r.Number, r.Bases, r.Authors, r.Consortium, r.Title, r.Journal,
			r.MedlineID, r.PubMedID, r.Remark, strings.Join(r.Xrefs, "\n")); err != nil {
			return fmt.Errorf("insert reference %s: %w", r.Number, err)
		}
	}
	return nil
}

func insertFeatures(ctx context.Context, tx *sql.Tx, entryID int64, features []record.Feature) error {
	featStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO seqfeature(bioentry_id, rank, key, location) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare features: %w", err)
	}
	defer func() { _ = featStmt.Close() }()
	qualStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO seqfeature_qualifier_value(seqfeature_id, rank, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare feature qualifiers: %w", err)
	}
	defer func() { _ = qualStmt.Close() }()

	for i, f := range features {
		res, err := featStmt.ExecContext(ctx, entryID, i, f.Key, f.Location)
		if err != nil {
			return fmt.Errorf("insert feature %d: %w", i, err)
		}
		featID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for j, q := range f.Qualifiers {
			var value sql.NullString
			if !q.Flag {
				value = sql.NullString{String: q.Value, Valid: true}
			}
			if _, err := qualStmt.ExecContext(ctx, featID, j, q.Name, value); err != nil {
				return fmt.Errorf("insert qualifier /%s of feature %d: %w", q.Name, i, err)
			}
		}
	}
	return nil
}
