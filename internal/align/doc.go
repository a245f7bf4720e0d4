// Package align merges a translated subtitle track onto the source track it
// was produced from when the two were segmented independently.
//
// The merge is driven by the source (secondary) track so every source block
// survives with its original timing. Translated (master) blocks that overlap
// a source block enough in time contribute their text; a source block with
// no qualifying overlap receives the untranslated sentinel instead.
package align
