// Package subtitles runs the file-level workflow: generating subtitles from
// a transcript, splitting a track into chunks for translation, merging the
// translation back into a bilingual track, filling untranslated blocks and
// checking the results.
//
// Every step reads and writes SubRip files through package srt and logs
// through the component logger given to NewService.
package subtitles
