package store

// The layout follows BioSQL in spirit: one bioentry per record grouped in
// named biodatabases, with the sequence, header qualifiers, references and
// features in side tables.
const schema = `
CREATE TABLE IF NOT EXISTS biodatabase (
	biodatabase_id INTEGER PRIMARY KEY,
	name           TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS bioentry (
	bioentry_id    INTEGER PRIMARY KEY,
	biodatabase_id INTEGER NOT NULL REFERENCES biodatabase(biodatabase_id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	accession      TEXT NOT NULL,
	identifier     TEXT NOT NULL DEFAULT '',
	division       TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	version        INTEGER NOT NULL DEFAULT 0,
	dialect        TEXT NOT NULL,
	UNIQUE (biodatabase_id, accession, version)
);
CREATE INDEX IF NOT EXISTS bioentry_name ON bioentry(name);
CREATE INDEX IF NOT EXISTS bioentry_identifier ON bioentry(identifier);

CREATE TABLE IF NOT EXISTS biosequence (
	bioentry_id INTEGER PRIMARY KEY REFERENCES bioentry(bioentry_id) ON DELETE CASCADE,
	length      INTEGER NOT NULL,
	alphabet    TEXT NOT NULL,
	seq         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS bioentry_qualifier_value (
	bioentry_id INTEGER NOT NULL REFERENCES bioentry(bioentry_id) ON DELETE CASCADE,
	term        TEXT NOT NULL,
	rank        INTEGER NOT NULL,
	value       TEXT NOT NULL,
	PRIMARY KEY (bioentry_id, term, rank)
);

CREATE TABLE IF NOT EXISTS reference (
	bioentry_id INTEGER NOT NULL REFERENCES bioentry(bioentry_id) ON DELETE CASCADE,
	rank        INTEGER NOT NULL,
	number      TEXT NOT NULL DEFAULT '',
	bases       TEXT NOT NULL DEFAULT '',
	authors     TEXT NOT NULL DEFAULT '',
	consortium  TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	journal     TEXT NOT NULL DEFAULT '',
	medline_id  TEXT NOT NULL DEFAULT '',
	pubmed_id   TEXT NOT NULL DEFAULT '',
	remark      TEXT NOT NULL DEFAULT '',
	xrefs       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (bioentry_id, rank)
);

CREATE TABLE IF NOT EXISTS seqfeature (
	seqfeature_id INTEGER PRIMARY KEY,
	bioentry_id   INTEGER NOT NULL REFERENCES bioentry(bioentry_id) ON DELETE CASCADE,
	rank          INTEGER NOT NULL,
	key           TEXT NOT NULL,
	location      TEXT NOT NULL,
	UNIQUE (bioentry_id, rank)
);

CREATE TABLE IF NOT EXISTS seqfeature_qualifier_value (
	seqfeature_id INTEGER NOT NULL REFERENCES seqfeature(seqfeature_id) ON DELETE CASCADE,
	rank          INTEGER NOT NULL,
	name          TEXT NOT NULL,
	value         TEXT,
	PRIMARY KEY (seqfeature_id, rank)
);
`
