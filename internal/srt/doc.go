// Package srt models timed subtitle text and reads and writes SubRip tracks.
//
// Parsing is tolerant: it accepts byte-order marks, CRLF line endings,
// missing index lines, and text glued to the end timestamp. Blocks that
// cannot be used are reported in a ParseReport instead of failing the whole
// file. Writing always renumbers blocks from 1.
package srt
