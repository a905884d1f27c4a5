package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"agstrans/internal/stringmap"
)

// Signature opens every binary pack: the ASCII text plus the NUL that
// fills the 15th byte.
const Signature = "AGSTranslation\x00"

const (
	blockEnd      int32 = -1
	blockStrings  int32 = 1
	blockGameID   int32 = 2
	blockSettings int32 = 3
)

// BinaryOptions configures BinaryParser.
type BinaryOptions struct {
	// Game, when set, must match any game identity block in the pack.
	Game *GameIdentity
	// Display, when set, receives font and direction settings as they are read.
	Display Display
}

// BinaryParser reads and writes compiled .tra packs.
type BinaryParser struct {
	opts BinaryOptions
}

func NewBinaryParser(opts BinaryOptions) *BinaryParser {
	return &BinaryParser{opts: opts}
}

func (p *BinaryParser) Format() Format { return FormatBinary }

func (p *BinaryParser) CanParse(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".tra")
}

// Verify consumes and checks the signature.
func (p *BinaryParser) Verify(r io.Reader) error {
	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return fmt.Errorf("%w: %v", ErrSignature, err)
	}
	if string(sig) != Signature {
		return ErrSignature
	}
	return nil
}

// Parse reads blocks until a terminator block or a clean end of stream.
// The block size field is read but not trusted.
func (p *BinaryParser) Parse(r io.Reader) (*ParseResult, error) {
	result := &ParseResult{
		Format:  FormatBinary,
		Entries: stringmap.New(),
	}

	for {
		blockType, err := readInt32(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, corrupt(err)
		}
		if blockType == blockEnd {
			break
		}
		if _, err := readInt32(r); err != nil {
			return nil, corrupt(err)
		}

		switch blockType {
		case blockStrings:
			err = p.readStrings(r, result.Entries)
		case blockGameID:
			err = p.readGameID(r, result)
		case blockSettings:
			err = p.readSettings(r, result)
		default:
			err = &UnknownBlockError{Type: blockType}
		}
		if err != nil {
			return nil, err
		}
	}

	if result.Entries.Len() == 0 {
		return nil, ErrEmpty
	}
	return result, nil
}

func (p *BinaryParser) readStrings(r io.Reader, entries *stringmap.Map) error {
	for {
		original, err := ReadString(r)
		if err != nil {
			return corrupt(err)
		}
		translation, err := ReadString(r)
		if err != nil {
			return corrupt(err)
		}
		if original == "" && translation == "" {
			return nil
		}
		entries.Insert(original, translation)
	}
}

func (p *BinaryParser) readGameID(r io.Reader, result *ParseResult) error {
	uid, err := readInt32(r)
	if err != nil {
		return corrupt(err)
	}
	name, err := ReadString(r)
	if err != nil {
		return corrupt(err)
	}
	result.Game = &GameIdentity{UniqueID: uid, Name: name}

	if p.opts.Game != nil && (uid != p.opts.Game.UniqueID || name != p.opts.Game.Name) {
		return &IncompatibleError{UniqueID: uid, GameName: name}
	}
	return nil
}

func (p *BinaryParser) readSettings(r io.Reader, result *ParseResult) error {
	var vals [3]int32
	for i := range vals {
		v, err := readInt32(r)
		if err != nil {
			return corrupt(err)
		}
		vals[i] = v
	}

	settings := &DisplaySettings{
		NormalFont: int(vals[0]),
		SpeechFont: int(vals[1]),
		Direction:  DirectionUnchanged,
	}
	if d := Direction(vals[2]); d == DirectionLeftToRight || d == DirectionRightToLeft {
		settings.Direction = d
	}
	result.Settings = settings

	if p.opts.Display == nil {
		return nil
	}
	if settings.NormalFont >= 0 {
		p.opts.Display.SetNormalFont(settings.NormalFont)
	}
	if settings.SpeechFont >= 0 {
		p.opts.Display.SetSpeechFont(settings.SpeechFont)
	}
	if settings.Direction != DirectionUnchanged {
		p.opts.Display.SetTextDirection(settings.Direction)
	}
	return nil
}

// Reconstruct writes a complete pack: signature, optional identity and
// settings blocks, one string block and the terminator.
func (p *BinaryParser) Reconstruct(w io.Writer, result *ParseResult) error {
	if _, err := io.WriteString(w, Signature); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	if result.Game != nil {
		var buf bytes.Buffer
		_ = writeInt32(&buf, result.Game.UniqueID)
		if err := WriteString(&buf, result.Game.Name); err != nil {
			return fmt.Errorf("encode game name: %w", err)
		}
		if err := writeBlock(w, blockGameID, buf.Bytes()); err != nil {
			return err
		}
	}

	if result.Settings != nil {
		var buf bytes.Buffer
		_ = writeInt32(&buf, int32(result.Settings.NormalFont))
		_ = writeInt32(&buf, int32(result.Settings.SpeechFont))
		_ = writeInt32(&buf, int32(result.Settings.Direction))
		if err := writeBlock(w, blockSettings, buf.Bytes()); err != nil {
			return err
		}
	}

	if result.Entries != nil && result.Entries.Len() > 0 {
		var buf bytes.Buffer
		var encErr error
		result.Entries.Each(func(original, translated string) {
			if encErr != nil {
				return
			}
			if original == "" && translated == "" {
				return
			}
			if err := WriteString(&buf, original); err != nil {
				encErr = err
				return
			}
			encErr = WriteString(&buf, translated)
		})
		if encErr != nil {
			return fmt.Errorf("encode strings: %w", encErr)
		}
		_ = WriteString(&buf, "")
		_ = WriteString(&buf, "")
		if err := writeBlock(w, blockStrings, buf.Bytes()); err != nil {
			return err
		}
	}

	if err := writeInt32(w, blockEnd); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}
	return nil
}

func writeBlock(w io.Writer, blockType int32, payload []byte) error {
	if err := writeInt32(w, blockType); err != nil {
		return fmt.Errorf("write block %d: %w", blockType, err)
	}
	if err := writeInt32(w, int32(len(payload))); err != nil {
		return fmt.Errorf("write block %d: %w", blockType, err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write block %d: %w", blockType, err)
	}
	return nil
}

func corrupt(err error) error {
	if errors.Is(err, ErrCorrupt) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCorrupt, err)
}
