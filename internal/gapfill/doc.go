// Package gapfill finds bilingual blocks whose translation is missing and
// patches them with text from an external generator.
//
// Gaps are the blocks carrying srt.Sentinel next to source-language text.
// Each gap is sent with the neighbouring blocks as context, a few gaps per
// request, and answers are matched back by item number. Gaps the generator
// does not answer keep their sentinel so a later run can retry them.
package gapfill
