package skip

// Reason identifies which rule decided that a file does not need a new
// subtitle. NotSkipped means work should proceed; callers must never treat
// it as a stop condition.
type Reason string

const (
	NotSkipped                      Reason = "not_skipped"
	TargetSubtitleExists            Reason = "target_subtitle_exists"
	ExternalSubtitleExists          Reason = "external_subtitle_exists"
	InternalSubtitleLanguageExists  Reason = "internal_subtitle_language_exists"
	SubtitleLanguageInSkipList      Reason = "subtitle_language_in_skip_list"
	AudioLanguageInSkipList         Reason = "audio_language_in_skip_list"
	UnknownLanguage                 Reason = "unknown_language"
	NoPreferredAudioLanguage        Reason = "no_preferred_audio_language"
	LRCFileExists                   Reason = "lrc_file_exists"
	LanguageNotSetButSubtitlesExist Reason = "language_not_set_but_subtitles_exist"
)

// Message renders the reason for user-facing log lines and CLI output.
func (r Reason) Message() string {
	switch r {
	case NotSkipped:
		return "not skipped"
	case TargetSubtitleExists:
		return "a subtitle in the target language already exists"
	case ExternalSubtitleExists:
		return "an external subtitle file already exists"
	case InternalSubtitleLanguageExists:
		return "an embedded subtitle in the configured language exists"
	case SubtitleLanguageInSkipList:
		return "an embedded subtitle language is in the skip list"
	case AudioLanguageInSkipList:
		return "an audio track language is in the skip list"
	case UnknownLanguage:
		return "the target language could not be determined"
	case NoPreferredAudioLanguage:
		return "no audio track matches the preferred languages"
	case LRCFileExists:
		return "a lyrics file already exists"
	case LanguageNotSetButSubtitlesExist:
		return "no target language is set and subtitles already exist"
	default:
		return string(r)
	}
}

func (r Reason) String() string {
	return string(r)
}
