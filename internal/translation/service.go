package translation

import (
	"bufio"
	"errors"
	"fmt"
	"path"
	"strings"

	"agstrans/internal/assets"
	"agstrans/internal/parser"
	"agstrans/internal/stringmap"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a pack file cannot be opened.
var ErrNotFound = errors.New("cannot open translation")

// compiledDir is searched for binary packs missing from the data directory.
const compiledDir = "Compiled"

// State is the lifecycle state of the active pack.
type State int

const (
	NoPack State = iota
	Loading
	Active
	LoadFailed
)

func (s State) String() string {
	switch s {
	case NoPack:
		return "no-pack"
	case Loading:
		return "loading"
	case Active:
		return "active"
	case LoadFailed:
		return "load-failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// AssetOpener opens pack files by name.
type AssetOpener interface {
	Open(name string) (assets.Asset, error)
}

// FileLocator is an AssetOpener that can also name the file on disk, which
// the untranslated log needs to append to it.
type FileLocator interface {
	AssetOpener
	Path(name string) (string, error)
}

// PluginHooks lets engine plugins replace a translation.
type PluginHooks interface {
	// TranslateText returns a replacement for text and true, or false to
	// leave the lookup to the pack.
	TranslateText(text string) (string, bool)
}

// FatalSink terminates the host on unrecoverable configuration errors.
type FatalSink interface {
	Quit(msg string)
}

// FatalFunc adapts a function to FatalSink.
type FatalFunc func(msg string)

func (f FatalFunc) Quit(msg string) { f(msg) }

// Pack is one loaded set of translations plus its load metadata.
type Pack struct {
	Language string
	FileName string
	Format   parser.Format
	// Verified is set when the pack carried a valid binary signature.
	Verified bool
	Game     *parser.GameIdentity
	Settings *parser.DisplaySettings

	entries *stringmap.Map
}

// Len returns the number of entries in the pack.
func (p *Pack) Len() int {
	return p.entries.Len()
}

// Lookup returns the raw entry for text, including empty translations.
func (p *Pack) Lookup(text string) (string, bool) {
	return p.entries.Find(text)
}

// Entries exposes the pack's string map for export.
func (p *Pack) Entries() *stringmap.Map {
	return p.entries
}

// Service owns the active language pack and answers lookups. It is not
// safe for concurrent use: loads and lookups must come from one goroutine.
type Service struct {
	packs          AssetOpener
	textPacks      FileLocator
	plugins        PluginHooks
	display        parser.Display
	game           *parser.GameIdentity
	fatal          FatalSink
	unfactorSpeech bool
	logger         zerolog.Logger

	state            State
	pack             *Pack
	fileName         string
	untranslated     *untranslatedLog
	sourceTextLength int
}

// Option configures a Service.
type Option func(*Service)

// WithPlugins installs the plugin hook consulted before the pack.
func WithPlugins(p PluginHooks) Option {
	return func(s *Service) { s.plugins = p }
}

// WithDisplay sets where font and text direction settings of a binary pack
// are applied.
func WithDisplay(d parser.Display) Option {
	return func(s *Service) { s.display = d }
}

// WithGame enables the game identity check of binary packs.
func WithGame(id parser.GameIdentity) Option {
	return func(s *Service) { s.game = &id }
}

// WithFatal replaces the default fatal sink, which logs and exits.
func WithFatal(f FatalSink) Option {
	return func(s *Service) { s.fatal = f }
}

// WithUnfactorSpeech removes "&N " speech prefixes from the source length.
func WithUnfactorSpeech(enabled bool) Option {
	return func(s *Service) { s.unfactorSpeech = enabled }
}

// WithLogger sets the logger used for load and fallback messages.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service. Binary packs are opened through packs, text packs
// and the untranslated log through textPacks.
func New(packs AssetOpener, textPacks FileLocator, opts ...Option) *Service {
	s := &Service{
		packs:     packs,
		textPacks: textPacks,
		logger:    log.Logger,
		state:     NoPack,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fatal == nil {
		logger := s.logger
		s.fatal = FatalFunc(func(msg string) {
			logger.Fatal().Msg(msg)
		})
	}
	return s
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	return s.state
}

// Pack returns the active pack, or nil.
func (s *Service) Pack() *Pack {
	return s.pack
}

// IsAvailable reports whether a pack is active.
func (s *Service) IsAvailable() bool {
	return s.pack != nil
}

// Name returns the base name of the last requested pack file without its
// extension, and whether a pack is active.
func (s *Service) Name() (string, bool) {
	name := path.Base(strings.ReplaceAll(s.fileName, "\\", "/"))
	if s.fileName == "" {
		name = ""
	}
	for _, ext := range []string{".tra", ".trs"} {
		if i := strings.Index(name, ext); i >= 0 {
			name = name[:i]
			break
		}
	}
	return name, s.IsAvailable()
}

// Close discards the active pack and the untranslated log.
func (s *Service) Close() {
	s.pack = nil
	s.untranslated = nil
	s.state = NoPack
}

// LoadPack loads lang in the given format, replacing the active pack.
// An empty lang loads the default pack. On failure a non-empty fallback is
// tried once, without a further fallback; the call succeeds if the fallback
// loads. With failFast, a pack that was found but could not be read is
// reported to the fatal sink instead.
func (s *Service) LoadPack(format parser.Format, lang, fallback string, failFast bool) error {
	err := s.loadPack(format, lang)
	if err == nil {
		return nil
	}

	if s.pack != nil {
		s.state = Active
	} else {
		s.state = LoadFailed
	}

	if failFast && !recoverable(err) {
		s.fatal.Quit("!" + err.Error())
		return err
	}

	s.logger.Error().Err(err).Str("pack", s.fileName).Msg("Translation not loaded")
	if fallback != "" {
		s.logger.Info().Str("fallback", fallback).Msg("Fallback to translation")
		if ferr := s.LoadPack(format, fallback, "", false); ferr == nil {
			return nil
		}
	}
	return err
}

func (s *Service) loadPack(format parser.Format, lang string) error {
	var opener AssetOpener
	switch format {
	case parser.FormatBinary:
		opener = s.packs
	case parser.FormatText:
		opener = s.textPacks
	default:
		return fmt.Errorf("load translation: %w: format %s", parser.ErrUnsupported, format)
	}
	p, err := parser.ForFormat(format, parser.BinaryOptions{Game: s.game, Display: s.display})
	if err != nil {
		return fmt.Errorf("load translation: %w", err)
	}
	if opener == nil {
		return fmt.Errorf("%w: no %s pack location configured", ErrNotFound, format)
	}

	s.fileName = packFileName(lang, format)
	asset, err := opener.Open(s.fileName)
	if err != nil && format == parser.FormatBinary && lang != "" {
		s.logger.Warn().Str("pack", s.fileName).Msg("Cannot open translation")
		s.fileName = compiledDir + "/" + s.fileName
		asset, err = opener.Open(s.fileName)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, s.fileName, err)
	}
	defer asset.Close()
	r := bufio.NewReader(asset)

	if err := p.Verify(r); err != nil {
		return fmt.Errorf("open translation %s: %w", s.fileName, err)
	}

	s.pack = nil
	s.untranslated = nil
	s.state = Loading

	result, err := p.Parse(r)
	if err != nil {
		return fmt.Errorf("failed to read translation file %s: %w", s.fileName, err)
	}

	s.pack = &Pack{
		Language: lang,
		FileName: s.fileName,
		Format:   format,
		Verified: format == parser.FormatBinary,
		Game:     result.Game,
		Settings: result.Settings,
		entries:  result.Entries,
	}
	s.state = Active
	s.logger.Info().Str("pack", s.fileName).Int("entries", result.Entries.Len()).Msg("Translation initialized")
	return nil
}

// recoverable errors never trigger the fatal sink.
func recoverable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, parser.ErrSignature)
}

func packFileName(lang string, format parser.Format) string {
	if lang == "" {
		lang = "default"
	}
	return lang + format.Ext()
}
