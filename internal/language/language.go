package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

// Code is the canonical form of a language identifier. Internally it is the
// ISO 639-1 two-letter code; every comparison in the skip engine happens on
// this type so that "eng", "en", and "English" all collapse to the same value.
type Code string

// None is the sentinel for input that could not be parsed as a language.
// It is distinct from an unset target language, which callers represent as
// an absent optional before normalization.
const None Code = ""

// English is special-cased by the transcription pipeline: the inference
// engine can translate to English natively without an LLM round trip.
const English Code = "en"

type entry struct {
	code2   string   // ISO 639-1
	code3t  string   // ISO 639-2/T (terminological)
	code3b  string   // ISO 639-2/B (bibliographic); empty when identical to code3t
	display string   // English name
	native  string   // native name
	words   []string // full word forms accepted on input
}

var languages = []entry{
	{"en", "eng", "", "English", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", "Español", []string{"spanish"}},
	{"fr", "fra", "fre", "French", "Français", []string{"french"}},
	{"de", "deu", "ger", "German", "Deutsch", []string{"german"}},
	{"it", "ita", "", "Italian", "Italiano", []string{"italian"}},
	{"pt", "por", "", "Portuguese", "Português", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", "日本語", []string{"japanese"}},
	{"ko", "kor", "", "Korean", "한국어", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", "中文", []string{"chinese", "mandarin"}},
	{"ru", "rus", "", "Russian", "Русский", []string{"russian"}},
	{"ar", "ara", "", "Arabic", "العربية", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", "हिन्दी", []string{"hindi"}},
	{"nl", "nld", "dut", "Dutch", "Nederlands", []string{"dutch"}},
	{"pl", "pol", "", "Polish", "Polski", []string{"polish"}},
	{"sv", "swe", "", "Swedish", "Svenska", []string{"swedish"}},
	{"da", "dan", "", "Danish", "Dansk", []string{"danish"}},
	{"no", "nor", "", "Norwegian", "Norsk", []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", "Suomi", []string{"finnish"}},
	{"tr", "tur", "", "Turkish", "Türkçe", []string{"turkish"}},
	{"el", "ell", "gre", "Greek", "Ελληνικά", []string{"greek"}},
	{"he", "heb", "", "Hebrew", "עברית", []string{"hebrew"}},
	{"cs", "ces", "cze", "Czech", "Čeština", []string{"czech"}},
	{"hu", "hun", "", "Hungarian", "Magyar", []string{"hungarian"}},
	{"ro", "ron", "rum", "Romanian", "Română", []string{"romanian"}},
	{"uk", "ukr", "", "Ukrainian", "Українська", []string{"ukrainian"}},
	{"th", "tha", "", "Thai", "ไทย", []string{"thai"}},
	{"vi", "vie", "", "Vietnamese", "Tiếng Việt", []string{"vietnamese"}},
	{"id", "ind", "", "Indonesian", "Bahasa Indonesia", []string{"indonesian"}},
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
		byCode3[e.code3t] = e
		if e.code3b != "" {
			byCode3[e.code3b] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(value string) *entry {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return nil
	}
	if e, ok := byCode2[value]; ok {
		return e
	}
	if e, ok := byCode3[value]; ok {
		return e
	}
	if e, ok := byWord[value]; ok {
		return e
	}
	return nil
}

// Parse normalizes any recognized language identifier (ISO 639-1, either
// ISO 639-2 variant, or a full English name) to its canonical Code.
// Unrecognized input yields None; "und" and "unknown" are treated as
// unparseable rather than as a language.
func Parse(value string) Code {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "", "und", "unknown", "none":
		return None
	}
	if e := lookup(value); e != nil {
		return Code(e.code2)
	}
	// Fall back to BCP-47 parsing for tags like "en-US" or "pt-BR".
	if tag, err := xlang.Parse(value); err == nil {
		base, conf := tag.Base()
		if conf >= xlang.High {
			if e := lookup(base.String()); e != nil {
				return Code(e.code2)
			}
		}
	}
	return None
}

// ParseSet parses a list of identifiers into a canonical set, dropping
// anything unparseable.
func ParseSet(values []string) map[Code]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[Code]struct{}, len(values))
	for _, value := range values {
		if code := Parse(value); code != None {
			set[code] = struct{}{}
		}
	}
	return set
}

// Intersect returns the members of a that are also in b, in table order.
func Intersect(a map[Code]struct{}, b map[Code]struct{}) []Code {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	matched := make([]Code, 0, len(a))
	for i := range languages {
		code := Code(languages[i].code2)
		if _, ok := a[code]; !ok {
			continue
		}
		if _, ok := b[code]; ok {
			matched = append(matched, code)
		}
	}
	return matched
}

// ISO1 returns the two-letter ISO 639-1 form, or empty for None.
func (c Code) ISO1() string {
	if c == None {
		return ""
	}
	return string(c)
}

// ISO2T returns the three-letter ISO 639-2/T form, or empty when unknown.
func (c Code) ISO2T() string {
	if e := lookup(string(c)); e != nil {
		return e.code3t
	}
	return ""
}

// ISO2B returns the three-letter ISO 639-2/B form. Languages without a
// separate bibliographic code reuse the terminological one.
func (c Code) ISO2B() string {
	e := lookup(string(c))
	if e == nil {
		return ""
	}
	if e.code3b != "" {
		return e.code3b
	}
	return e.code3t
}

// Name returns the English display name, or "Unknown" for None.
func (c Code) Name() string {
	if e := lookup(string(c)); e != nil {
		return e.display
	}
	if c == None {
		return "Unknown"
	}
	return cases.Title(xlang.Und).String(string(c))
}

// NativeName returns the language's own name for itself.
func (c Code) NativeName() string {
	if e := lookup(string(c)); e != nil {
		return e.native
	}
	return c.Name()
}

func (c Code) String() string {
	return c.ISO1()
}

// Strings converts a code list to its ISO 639-1 forms for logging.
func Strings(codes []Code) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, code.ISO1())
	}
	return out
}
