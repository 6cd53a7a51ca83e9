package insdc

// FieldName names a header or footer value. Both dialects map their line
// codes onto this common vocabulary.
type FieldName string

const (
	FieldLocus          FieldName = "locus"
	FieldSize           FieldName = "size"
	FieldResidueType    FieldName = "residue_type"
	FieldTopology       FieldName = "topology"
	FieldDataClass      FieldName = "data_class"
	FieldDivision       FieldName = "data_file_division"
	FieldDate           FieldName = "date"
	FieldDefinition     FieldName = "definition"
	FieldAccession      FieldName = "accession"
	FieldNID            FieldName = "nid"
	FieldPID            FieldName = "pid"
	FieldVersion        FieldName = "version"
	FieldGI             FieldName = "gi"
	FieldDBSource       FieldName = "db_source"
	FieldKeywords       FieldName = "keywords"
	FieldSegment        FieldName = "segment"
	FieldSource         FieldName = "source"
	FieldOrganism       FieldName = "organism"
	FieldTaxonomy       FieldName = "taxonomy"
	FieldReferenceNum   FieldName = "reference_num"
	FieldReferenceBases FieldName = "reference_bases"
	FieldAuthors        FieldName = "authors"
	FieldConsortium     FieldName = "consrtm"
	FieldTitle          FieldName = "title"
	FieldJournal        FieldName = "journal"
	FieldMedlineID      FieldName = "medline_id"
	FieldPubMedID       FieldName = "pubmed_id"
	FieldRemark         FieldName = "remark"
	FieldReferenceXref  FieldName = "reference_xref"
	FieldComment        FieldName = "comment"
	FieldDBXref         FieldName = "dbxref"
	FieldBaseCount      FieldName = "base_count"
	FieldOriginName     FieldName = "origin_name"
	FieldContigLocation FieldName = "contig_location"
)
