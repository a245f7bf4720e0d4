// Command autosub turns recognizer transcripts into subtitles and builds
// bilingual tracks from translated chunks, filling missing translations with
// a text-generation model.
package main
