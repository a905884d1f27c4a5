package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"agstrans/internal/stringmap"
)

const maxLineSize = 4 * 1024 * 1024

// untranslatedSuffix ends the file name of every untranslated strings log.
const untranslatedSuffix = "_untrans.trs"

// TextParser handles plain-text packs: an original line followed by its
// translation line, repeated.
type TextParser struct{}

func NewTextParser() *TextParser { return &TextParser{} }

func (p *TextParser) Format() Format { return FormatText }

func (p *TextParser) CanParse(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".trs") && !strings.HasSuffix(name, untranslatedSuffix)
}

// Verify is a no-op: text packs have no header.
func (p *TextParser) Verify(io.Reader) error { return nil }

func (p *TextParser) Parse(r io.Reader) (*ParseResult, error) {
	result := &ParseResult{
		Format:  FormatText,
		Entries: stringmap.New(),
	}
	err := scanPairs(r, func(original, translation string) {
		result.Entries.Insert(original, translation)
	})
	if err != nil {
		return nil, err
	}
	if result.Entries.Len() == 0 {
		return nil, ErrEmpty
	}
	return result, nil
}

func (p *TextParser) Reconstruct(w io.Writer, result *ParseResult) error {
	return writePairs(w, result, false)
}

// UntranslatedParser reads the untranslated strings log. It has the same
// pairing as a text pack but only the original half is kept.
type UntranslatedParser struct{}

func NewUntranslatedParser() *UntranslatedParser { return &UntranslatedParser{} }

func (p *UntranslatedParser) Format() Format { return FormatUntranslated }

func (p *UntranslatedParser) CanParse(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), untranslatedSuffix)
}

func (p *UntranslatedParser) Verify(io.Reader) error { return nil }

// Parse never fails on an empty log.
func (p *UntranslatedParser) Parse(r io.Reader) (*ParseResult, error) {
	result := &ParseResult{
		Format:  FormatUntranslated,
		Entries: stringmap.New(),
	}
	err := scanPairs(r, func(original, _ string) {
		result.Entries.Insert(original, "")
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *UntranslatedParser) Reconstruct(w io.Writer, result *ParseResult) error {
	return writePairs(w, result, true)
}

// AppendUntranslated writes one log record for text.
func AppendUntranslated(w io.Writer, text string) error {
	_, err := io.WriteString(w, text+"\n\n")
	return err
}

// scanPairs calls fn for every complete pair of trimmed lines. A trailing
// unpaired line is dropped.
func scanPairs(r io.Reader, fn func(original, translation string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var original string
	haveOriginal := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !haveOriginal {
			original = line
			haveOriginal = true
			continue
		}
		fn(original, line)
		haveOriginal = false
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan pack: %w", err)
	}
	return nil
}

func writePairs(w io.Writer, result *ParseResult, originalsOnly bool) error {
	if result.Entries == nil {
		return nil
	}
	bw := bufio.NewWriter(w)
	result.Entries.Each(func(original, translated string) {
		if originalsOnly {
			translated = ""
		}
		fmt.Fprintf(bw, "%s\n%s\n", original, translated)
	})
	return bw.Flush()
}
