// Package io reads genome graphs from GFA and UniMoG files and writes the
// text reports produced by the measure and scan stages.
//
// # Input Formats
//
// GFA (v1) files contribute segments, links, paths and walks:
//
//	S	s1	ACGT	LN:i:4
//	S	s2	*	LN:i:12
//	L	s1	+	s2	-	0M
//	P	chr1	s1+,s2-	*
//
// A segment's size is its LN tag, or the length of its sequence when the tag
// is absent. The first and last element of every path or walk close a
// chromosome and become telomere adjacencies. Segment names are assigned
// marker ids from 1 in order of first appearance.
//
// UniMoG files list one chromosome per line as whitespace-separated genes,
// with a leading '-' marking reverse orientation and a final ')' or '|'
// marking a circular or linear chromosome. Lines starting with '>' name a
// genome and are skipped. UniMoG genes have size 0.
//
// Both readers return a [graph.Raw]; errors carry the offending line number
// and the INVALID_FORMAT code.
//
// # Compressed Input
//
// [Open] transparently decompresses gzip and zstd streams, detected by their
// magic bytes, so every Import function accepts .gfa.gz or .gfa.zst files.
//
// # Reports
//
// The Write functions produce the plain-text outputs of the CLI: the measure
// summary, ancestral adjacency lists, complexity histograms, percentile
// reports, and GFA files annotated with complexity colors.
package io
