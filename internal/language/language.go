package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string
	scripts []*unicode.RangeTable
}

var latin = []*unicode.RangeTable{unicode.Latin}

var languages = []entry{
	{"en", "eng", "", "English", latin},
	{"es", "spa", "", "Spanish", latin},
	{"fr", "fra", "fre", "French", latin},
	{"de", "deu", "ger", "German", latin},
	{"it", "ita", "", "Italian", latin},
	{"pt", "por", "", "Portuguese", latin},
	{"ja", "jpn", "", "Japanese", []*unicode.RangeTable{unicode.Han, unicode.Hiragana, unicode.Katakana}},
	{"ko", "kor", "", "Korean", []*unicode.RangeTable{unicode.Hangul}},
	{"zh", "zho", "chi", "Chinese", []*unicode.RangeTable{unicode.Han}},
	{"ru", "rus", "", "Russian", []*unicode.RangeTable{unicode.Cyrillic}},
	{"uk", "ukr", "", "Ukrainian", []*unicode.RangeTable{unicode.Cyrillic}},
	{"ar", "ara", "", "Arabic", []*unicode.RangeTable{unicode.Arabic}},
	{"he", "heb", "", "Hebrew", []*unicode.RangeTable{unicode.Hebrew}},
	{"hi", "hin", "", "Hindi", []*unicode.RangeTable{unicode.Devanagari}},
	{"th", "tha", "", "Thai", []*unicode.RangeTable{unicode.Thai}},
	{"el", "ell", "gre", "Greek", []*unicode.RangeTable{unicode.Greek}},
	{"nl", "nld", "dut", "Dutch", latin},
	{"pl", "pol", "", "Polish", latin},
	{"sv", "swe", "", "Swedish", latin},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		byWord[strings.ToLower(e.display)] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		if e, ok := byCode2[base.String()]; ok {
			return e
		}
	}
	return nil
}

// ToISO2 converts a recognized language code, word, or BCP-47 tag to ISO 639-1.
// Unknown 2-letter input passes through; anything else returns "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable name for code. Full BCP-47 tags keep
// their script or region qualifier ("zh-Hans" is "Simplified Chinese").
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if strings.ContainsAny(trimmed, "-_") {
		if tag, err := language.Parse(trimmed); err == nil {
			if name := display.English.Tags().Name(tag); name != "" {
				return name
			}
		}
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	if tag, err := language.Parse(trimmed); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// scriptsFor returns the Unicode script tables that identify code. Unknown
// languages default to Han, matching the Chinese target most tracks use.
func scriptsFor(code string) []*unicode.RangeTable {
	if e := lookup(code); e != nil {
		return e.scripts
	}
	return []*unicode.RangeTable{unicode.Han}
}

// HasScript reports whether text contains at least one rune written in a
// script of the language named by code.
func HasScript(text, code string) bool {
	return hasAny(text, scriptsFor(code))
}

// Matcher returns a predicate equivalent to HasScript for a fixed code.
func Matcher(code string) func(string) bool {
	tables := scriptsFor(code)
	return func(text string) bool {
		return hasAny(text, tables)
	}
}

func hasAny(text string, tables []*unicode.RangeTable) bool {
	for _, r := range text {
		if unicode.In(r, tables...) {
			return true
		}
	}
	return false
}
