package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"agstrans/internal/stringmap"
	"agstrans/internal/textutil"

	"golang.org/x/text/encoding"
)

// Entry is one exported original/translation pair.
type Entry struct {
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`
	Hash           string `json:"hash"`
}

// Entries flattens m into a slice in byte order of the original, decoding
// both halves from enc.
func Entries(m *stringmap.Map, enc encoding.Encoding) ([]Entry, error) {
	entries := make([]Entry, 0, m.Len())
	var decodeErr error
	m.Each(func(original, translated string) {
		if decodeErr != nil {
			return
		}
		src, err := textutil.ToUTF8(enc, original)
		if err != nil {
			decodeErr = fmt.Errorf("decode %q: %w", textutil.Truncate(original, 30), err)
			return
		}
		dst, err := textutil.ToUTF8(enc, translated)
		if err != nil {
			decodeErr = fmt.Errorf("decode translation of %q: %w", textutil.Truncate(original, 30), err)
			return
		}
		entries = append(entries, Entry{
			SourceText:     src,
			TranslatedText: dst,
			Hash:           textutil.Hash(original),
		})
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return entries, nil
}

// ExportTSV writes entries as a header line plus one tab-separated row each.
func ExportTSV(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "source_text\ttranslated_text\thash")
	for _, e := range entries {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", escapeTSV(e.SourceText), escapeTSV(e.TranslatedText), e.Hash)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write TSV: %w", err)
	}
	return nil
}

// ExportJSON writes entries as an indented JSON array.
func ExportJSON(w io.Writer, entries []Entry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
