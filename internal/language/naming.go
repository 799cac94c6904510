package language

import "strings"

// NamingStyle selects how a language is rendered inside subtitle filenames.
type NamingStyle string

const (
	NamingISO1   NamingStyle = "iso_639_1"   // movie.en.srt
	NamingISO2T  NamingStyle = "iso_639_2_t" // movie.eng.srt (deu, fra)
	NamingISO2B  NamingStyle = "iso_639_2_b" // movie.eng.srt (ger, fre)
	NamingName   NamingStyle = "name"        // movie.English.srt
	NamingNative NamingStyle = "native"      // movie.Español.srt
)

// ParseNamingStyle returns the style for a config value, defaulting to
// ISO 639-2/B which matches what most media servers expect.
func ParseNamingStyle(value string) NamingStyle {
	switch NamingStyle(strings.ToLower(strings.TrimSpace(value))) {
	case NamingISO1:
		return NamingISO1
	case NamingISO2T:
		return NamingISO2T
	case NamingName:
		return NamingName
	case NamingNative:
		return NamingNative
	default:
		return NamingISO2B
	}
}

// Format renders the code in the requested style. Unknown codes fall back to
// their raw canonical form so filenames stay deterministic.
func (s NamingStyle) Format(code Code) string {
	if code == None {
		return ""
	}
	switch s {
	case NamingISO1:
		return code.ISO1()
	case NamingISO2T:
		if v := code.ISO2T(); v != "" {
			return v
		}
	case NamingName:
		return code.Name()
	case NamingNative:
		return code.NativeName()
	default:
		if v := code.ISO2B(); v != "" {
			return v
		}
	}
	return code.ISO1()
}
