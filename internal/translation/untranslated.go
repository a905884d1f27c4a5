package translation

import (
	"fmt"
	"os"

	"agstrans/internal/parser"
	"agstrans/internal/stringmap"
)

// untranslatedLog appends originals missing from the pack to a text file,
// each at most once.
type untranslatedLog struct {
	path string
	seen *stringmap.Map
}

func (l *untranslatedLog) record(text string) error {
	if l.seen.Has(text) {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open untranslated log: %w", err)
	}
	defer f.Close()

	if err := parser.AppendUntranslated(f, text); err != nil {
		return fmt.Errorf("append untranslated log: %w", err)
	}
	l.seen.Insert(text, "")
	return nil
}

// EnableUntranslatedLog starts recording misses to <lang>_untrans.trs in
// the text pack location. The file must already exist; strings it already
// lists are not logged again. On failure logging is disabled.
func (s *Service) EnableUntranslatedLog(lang string) error {
	s.untranslated = nil
	if s.textPacks == nil {
		return fmt.Errorf("%w: no text pack location configured", ErrNotFound)
	}

	name := untranslatedFileName(lang)
	path, err := s.textPacks.Path(name)
	if err != nil {
		s.logger.Warn().Str("log", name).Msg("Cannot open untranslated log")
		return fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	defer f.Close()

	result, err := parser.NewUntranslatedParser().Parse(f)
	if err != nil {
		s.logger.Error().Err(err).Str("log", name).Msg("Failed to read untranslated log")
		return fmt.Errorf("failed to read untranslated log %s: %w", name, err)
	}

	s.untranslated = &untranslatedLog{path: path, seen: result.Entries}
	s.logger.Info().Str("log", name).Int("known", result.Entries.Len()).Msg("Untranslated log initialized")
	return nil
}

// UntranslatedLogPath returns the file misses are appended to, if enabled.
func (s *Service) UntranslatedLogPath() (string, bool) {
	if s.untranslated == nil {
		return "", false
	}
	return s.untranslated.path, true
}

func untranslatedFileName(lang string) string {
	if lang == "" {
		lang = "default"
	}
	return lang + "_untrans.trs"
}
