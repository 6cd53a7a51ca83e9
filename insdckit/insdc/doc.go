// Package insdc scans GenBank and EMBL flat files, the two dialects that share
// the INSDC feature table.
//
// A Scanner reads one record at a time and pushes events (record start, header
// fields, features, footer fields, sequence, record end) to a Handler. The
// dialect supplies the fixed column layout and the mapping of header and
// footer lines to named fields; the record and section state machine lives in
// the Scanner and is shared by both dialects.
//
// Qualifier values are delivered raw: quotes and embedded newlines are kept.
// Cleaning them is left to the consumer (see package record).
package insdc
