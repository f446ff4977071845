// Package ingest loads motion-capture recordings from directories of
// per-marker CSV files.
//
// A recording directory holds one <marker>.csv per tracked marker. Each row
// is one frame of comma-separated coordinates; blank and "nan" cells mark
// missing samples. Markers are ordered by name so that recordings of the
// same session share a marker axis.
//
// Optional boundary comments of the form "begin from N stop on M" trim a
// recording to frames [N, M) before it is built.
package ingest
