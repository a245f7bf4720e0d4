// Package language normalizes language codes and classifies text by script.
//
// Codes are accepted as ISO 639-1, ISO 639-2, English words, or BCP-47 tags
// (parsed with golang.org/x/text/language). Script detection decides which
// lines of a bilingual block belong to the target language.
package language
