package skip

import (
	"context"
	"log/slog"
	"path/filepath"

	"submate/internal/config"
	"submate/internal/language"
	"submate/internal/logging"
	"submate/internal/subtitles"
)

// Inspector answers the read-only media and filesystem questions the rules
// need. *subtitles.Library is the production implementation.
type Inspector interface {
	InternalSubtitleLanguages(ctx context.Context, path string) []language.Code
	AudioLanguages(ctx context.Context, path string) []language.Code
	HasAnyExternalSubtitle(path string) bool
	HasLRC(path string) bool
	HasSubtitleLanguage(ctx context.Context, path string, code language.Code, onlyGenerated bool) bool
	HasInternalSubtitleLanguage(ctx context.Context, path string, code language.Code) bool
}

// Settings holds the rule configuration with language values already
// normalized. Build one with SettingsFromConfig.
type Settings struct {
	LRCForAudioFiles                  bool
	SkipUnknownLanguage               bool
	SkipIfTargetSubtitleExists        bool
	OnlyGeneratedSubtitles            bool
	SkipInternalSubtitleLanguage      language.Code
	SkipIfExternalSubtitlesExist      bool
	SkipSubtitleLanguages             map[language.Code]struct{}
	SkipAudioLanguages                map[language.Code]struct{}
	PreferredAudioLanguages           map[language.Code]struct{}
	LimitToPreferredAudioLanguages    bool
	SkipIfNoLanguageButSubtitlesExist bool
}

// SettingsFromConfig normalizes the raw subtitle configuration into engine
// settings. Unparseable language entries were already rejected by config
// validation.
func SettingsFromConfig(cfg config.Subtitles) Settings {
	return Settings{
		LRCForAudioFiles:                  cfg.LRCForAudioFiles,
		SkipUnknownLanguage:               cfg.SkipUnknownLanguage,
		SkipIfTargetSubtitleExists:        cfg.SkipIfTargetSubtitleExists,
		OnlyGeneratedSubtitles:            cfg.OnlySkipIfGeneratedSubtitle,
		SkipInternalSubtitleLanguage:      language.Parse(cfg.SkipIfInternalSubtitleLanguage),
		SkipIfExternalSubtitlesExist:      cfg.SkipIfExternalSubtitlesExist,
		SkipSubtitleLanguages:             language.ParseSet(cfg.SkipSubtitleLanguages),
		SkipAudioLanguages:                language.ParseSet(cfg.SkipIfAudioLanguages),
		PreferredAudioLanguages:           language.ParseSet(cfg.PreferredAudioLanguages),
		LimitToPreferredAudioLanguages:    cfg.LimitToPreferredAudioLanguages,
		SkipIfNoLanguageButSubtitlesExist: cfg.SkipIfNoLanguageButSubtitlesExist,
	}
}

// Engine evaluates the ordered skip rules against a file.
type Engine struct {
	inspector Inspector
	logger    *slog.Logger
}

// NewEngine builds an Engine over the given inspector.
func NewEngine(inspector Inspector, logger *slog.Logger) *Engine {
	return &Engine{
		inspector: inspector,
		logger:    logging.WithComponent(logger, "skip"),
	}
}

// Decide runs the rule chain for a file. Rules are checked in a fixed order
// and the first match wins; the order is deliberate (a target-language match
// must report target_subtitle_exists even when a skip-list rule would also
// fire). The returned reason is NotSkipped exactly when skip is false.
//
// Decide only reads state. It never writes files or mutates the inspector.
func (e *Engine) Decide(ctx context.Context, path string, target language.Code, settings Settings) (bool, Reason) {
	file := slog.String(logging.FieldFile, filepath.Base(path))

	// Rule 1: lyrics sidecar already present for an audio file.
	if settings.LRCForAudioFiles && subtitles.IsAudioFile(path) && e.inspector.HasLRC(path) {
		return true, LRCFileExists
	}

	// Rule 2: target language could not be resolved.
	if settings.SkipUnknownLanguage && target == language.None {
		return true, UnknownLanguage
	}

	// Rule 3: a subtitle in the target language already exists.
	if settings.SkipIfTargetSubtitleExists && target != language.None &&
		e.inspector.HasSubtitleLanguage(ctx, path, target, settings.OnlyGeneratedSubtitles) {
		return true, TargetSubtitleExists
	}

	// Rule 4: an embedded subtitle in the configured language exists.
	if settings.SkipInternalSubtitleLanguage != language.None &&
		e.inspector.HasInternalSubtitleLanguage(ctx, path, settings.SkipInternalSubtitleLanguage) {
		return true, InternalSubtitleLanguageExists
	}

	// Rule 5: any external subtitle file exists.
	if settings.SkipIfExternalSubtitlesExist && e.inspector.HasAnyExternalSubtitle(path) {
		return true, ExternalSubtitleExists
	}

	var internalLangs []language.Code

	// Rule 6: embedded subtitle languages intersect the skip list.
	if len(settings.SkipSubtitleLanguages) > 0 {
		internalLangs = e.inspector.InternalSubtitleLanguages(ctx, path)
		if matched := language.Intersect(codeSet(internalLangs), settings.SkipSubtitleLanguages); len(matched) > 0 {
			e.logger.Debug("subtitle languages in skip list", file,
				slog.Any("matched", language.Strings(matched)))
			return true, SubtitleLanguageInSkipList
		}
	}

	// Rules 7 and 8 both need the audio languages.
	var audioLangs []language.Code
	if len(settings.SkipAudioLanguages) > 0 || settings.LimitToPreferredAudioLanguages {
		audioLangs = e.inspector.AudioLanguages(ctx, path)
	}

	// Rule 7: audio track languages intersect the skip list.
	if len(settings.SkipAudioLanguages) > 0 {
		if matched := language.Intersect(codeSet(audioLangs), settings.SkipAudioLanguages); len(matched) > 0 {
			e.logger.Debug("audio languages in skip list", file,
				slog.Any("matched", language.Strings(matched)))
			return true, AudioLanguageInSkipList
		}
	}

	// Rule 8: no audio track in the preferred-language allow list.
	if settings.LimitToPreferredAudioLanguages && len(settings.PreferredAudioLanguages) > 0 {
		if len(language.Intersect(codeSet(audioLangs), settings.PreferredAudioLanguages)) == 0 {
			return true, NoPreferredAudioLanguage
		}
	}

	// Rule 9: target unresolved but the file already carries subtitles.
	if settings.SkipIfNoLanguageButSubtitlesExist && target == language.None {
		if internalLangs == nil {
			internalLangs = e.inspector.InternalSubtitleLanguages(ctx, path)
		}
		if len(internalLangs) > 0 {
			return true, LanguageNotSetButSubtitlesExist
		}
	}

	return false, NotSkipped
}

func codeSet(codes []language.Code) map[language.Code]struct{} {
	set := make(map[language.Code]struct{}, len(codes))
	for _, code := range codes {
		if code != language.None {
			set[code] = struct{}{}
		}
	}
	return set
}
