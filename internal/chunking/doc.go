// Package chunking turns a stream of timed words into subtitle blocks.
//
// A pacing classifier picks one of two fixed profiles (formal for measured
// speech with long pauses, spoken for conversational flow). The chunker then
// makes a single greedy pass over the words, breaking on character and
// duration budgets, long pauses, and sentence ends, and looks a few words
// ahead so a sentence that is about to finish stays in one block.
package chunking
