package translation

import (
	"strings"

	"agstrans/internal/textutil"
)

// placeholderToken is passed through the engine's text paths on its own and
// is never translated.
const placeholderToken = "%c"

// Translate returns the translation of text, or text itself when it is
// exempt, already in the game's extended code page, missing from the pack
// or translated to an empty string. Misses are written to the untranslated
// log when it is enabled.
func (s *Service) Translate(text string) string {
	if text == "" || text == placeholderToken {
		return text
	}
	// Anything outside ASCII is already translated text.
	if textutil.HasHighByte(text) {
		return text
	}

	s.sourceTextLength = s.sourceLength(text)

	if s.plugins != nil {
		if replacement, ok := s.plugins.TranslateText(text); ok {
			return replacement
		}
	}

	if s.pack == nil {
		return text
	}

	if translated, ok := s.pack.entries.Find(text); ok && translated != "" {
		return translated
	}

	if s.untranslated != nil {
		if err := s.untranslated.record(text); err != nil {
			s.logger.Warn().Err(err).Str("text", textutil.Truncate(text, 30)).Msg("Failed to log untranslated text")
		}
	}
	return text
}

// SourceTextLength returns the length of the last text offered for
// translation, used by the engine to time speech display.
func (s *Service) SourceTextLength() int {
	return s.sourceTextLength
}

// sourceLength drops a leading "&N " voice cue from the count when enabled.
// Anything else starting with '&' is counted in full.
func (s *Service) sourceLength(text string) int {
	if !s.unfactorSpeech {
		return len(text)
	}
	return len(text) - len(speechPrefix(text))
}

// speechPrefix returns the "&<digits> " voice cue at the start of text, or "".
func speechPrefix(text string) string {
	if !strings.HasPrefix(text, "&") {
		return ""
	}
	i := 1
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	if i == 1 || i == len(text) || text[i] != ' ' {
		return ""
	}
	return text[:i+1]
}
