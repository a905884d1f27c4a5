package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"agstrans/internal/stringmap"
)

// Format identifies the on-disk layout of a language pack.
type Format int

const (
	// FormatBinary is the compiled, obfuscated block format (.tra).
	FormatBinary Format = iota
	// FormatText is the plain-text original/translation line-pair format (.trs).
	FormatText
	// FormatUntranslated is the untranslated strings log (_untrans.trs).
	FormatUntranslated
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "tra"
	case FormatText:
		return "trs"
	case FormatUntranslated:
		return "untrans"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Ext returns the file extension used by packs of this format.
func (f Format) Ext() string {
	switch f {
	case FormatBinary:
		return ".tra"
	default:
		return ".trs"
	}
}

// ParseFormat maps a config or flag value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "tra", "binary":
		return FormatBinary, nil
	case "trs", "text":
		return FormatText, nil
	case "untrans", "untranslated":
		return FormatUntranslated, nil
	}
	return 0, fmt.Errorf("unknown pack format %q", s)
}

// Errors reported while reading a pack. All of them abort the load.
var (
	ErrSignature = errors.New("translation signature mismatch")
	ErrCorrupt   = errors.New("translation file is corrupt")
	ErrEmpty     = errors.New("the translation file was empty")
)

// IncompatibleError is returned when a pack was built for another game.
type IncompatibleError struct {
	UniqueID int32
	GameName string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("the translation file is not compatible with this game; the translation is designed for '%s'", e.GameName)
}

// UnknownBlockError carries a block type the reader does not understand.
type UnknownBlockError struct {
	Type int32
}

func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("unknown block type in translation file (%d)", e.Type)
}

// Direction is the text direction requested by a pack.
type Direction int

const (
	DirectionUnchanged   Direction = 0
	DirectionLeftToRight Direction = 1
	DirectionRightToLeft Direction = 2
)

func (d Direction) String() string {
	switch d {
	case DirectionLeftToRight:
		return "ltr"
	case DirectionRightToLeft:
		return "rtl"
	default:
		return "unchanged"
	}
}

// Display receives the presentation settings carried by a binary pack.
type Display interface {
	SetNormalFont(index int)
	SetSpeechFont(index int)
	SetTextDirection(dir Direction)
}

// GameIdentity identifies the game a pack was compiled for.
type GameIdentity struct {
	UniqueID int32
	Name     string
}

// DisplaySettings records a type 3 block. A negative font index means
// "keep the current font".
type DisplaySettings struct {
	NormalFont int
	SpeechFont int
	Direction  Direction
}

// ParseResult holds the output of reading a single pack.
type ParseResult struct {
	// Format is the layout the pack was read with.
	Format Format
	// Entries maps originals to translations.
	Entries *stringmap.Map
	// Game is the identity recorded in the pack, if it had one.
	Game *GameIdentity
	// Settings are the display settings recorded in the pack, if any.
	Settings *DisplaySettings
}

// Parser is the interface for all pack format readers.
type Parser interface {
	// Format returns the layout handled by this parser.
	Format() Format
	// CanParse returns true if this parser handles the named file.
	CanParse(name string) bool
	// Verify checks the pack header and leaves r positioned at the payload.
	Verify(r io.Reader) error
	// Parse reads the payload into a fresh string map.
	Parse(r io.Reader) (*ParseResult, error)
	// Reconstruct writes result back out in this parser's format.
	Reconstruct(w io.Writer, result *ParseResult) error
}

// ErrUnsupported is returned when no parser handles a file or format.
var ErrUnsupported = errors.New("unsupported pack")

// Parsers returns one parser per format. opts configures the binary parser.
func Parsers(opts BinaryOptions) []Parser {
	return []Parser{
		NewBinaryParser(opts),
		NewTextParser(),
		NewUntranslatedParser(),
	}
}

// ForFile picks the parser that handles the named file.
func ForFile(name string, opts BinaryOptions) (Parser, error) {
	for _, p := range Parsers(opts) {
		if p.CanParse(name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
}

// ForFormat picks the parser for format.
func ForFormat(format Format, opts BinaryOptions) (Parser, error) {
	for _, p := range Parsers(opts) {
		if p.Format() == format {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: format %s", ErrUnsupported, format)
}

// ParseAll verifies the header and parses the payload.
func ParseAll(p Parser, r io.Reader) (*ParseResult, error) {
	if err := p.Verify(r); err != nil {
		return nil, err
	}
	return p.Parse(r)
}
